package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strconv"
)

var ErrResponseFlushed = errors.New("http: response already flushed")

type Response struct {
	Status            int
	StatusDescription string
	Headers           Header

	// Body is written as is, or encoded when the client negotiated a
	// supported content-coding. nil and empty bodies send no Content-Length.
	Body []byte

	conn           io.Writer
	acceptEncoding string
	logger         *slog.Logger
	flushed        bool
}

// NewResponse creates a 200 OK response that will be written to conn and
// negotiated against the Accept-Encoding header of req.
func NewResponse(conn io.Writer, req *Request, logger *slog.Logger) *Response {
	if logger == nil {
		logger = slog.Default()
	}

	res := Response{
		Status:            StatusOK,
		StatusDescription: StatusText(StatusOK),
		conn:              conn,
		logger:            logger,
	}
	if req != nil {
		res.acceptEncoding = req.Header("Accept-Encoding")
	}

	return &res
}

func (res *Response) SetStatus(status int, description string) {
	res.Status = status
	res.StatusDescription = description
}

func (res *Response) SetHeader(name, value string) {
	res.Headers.Set(name, value)
}

func (res *Response) SetBody(body []byte) {
	res.Body = body
}

// Flushed reports whether the response has been written to the connection.
func (res *Response) Flushed() bool {
	return res.flushed
}

// Flush serializes the response and writes it to the connection in a single
// call. A response can only be flushed once; later calls return
// ErrResponseFlushed and write nothing.
func (res *Response) Flush() error {
	if res.flushed {
		return ErrResponseFlushed
	}
	res.flushed = true

	description := res.StatusDescription
	if description == "" {
		description = StatusText(res.Status)
	}

	var buf bytes.Buffer
	buf.WriteString(protocolHttp11)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(res.Status))
	buf.WriteByte(' ')
	buf.WriteString(description)
	buf.Write(crlf)

	body := res.Body
	if len(body) > 0 {
		encoder, found := NegotiateEncoder(res.acceptEncoding, func(name string, err error) {
			res.logger.Debug("skipping content-coding", "encoding", name, "error", err)
		})
		if found {
			res.Headers.Set("Content-Encoding", encoder.Name())
			body = encoder.Encode(body)
		}

		// Length of what goes on the wire, so after encoding.
		res.Headers.Set("Content-Length", strconv.Itoa(len(body)))
	}

	res.Headers.Each(func(name, value string) {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.Write(crlf)
	})
	buf.Write(crlf)
	buf.Write(body)

	if _, err := res.conn.Write(buf.Bytes()); err != nil {
		res.logger.Debug("writing response failed", "status", res.Status, "error", err)
		return err
	}
	return nil
}

// OK flushes a 200 response with an optional body.
func (res *Response) OK(body []byte) error {
	res.SetStatus(StatusOK, StatusText(StatusOK))
	res.SetBody(body)
	return res.Flush()
}

// Created flushes a 201 response, used once a resource has been stored.
func (res *Response) Created(body []byte) error {
	res.SetStatus(StatusCreated, StatusText(StatusCreated))
	res.SetBody(body)
	return res.Flush()
}

func (res *Response) NotFound() error {
	res.SetStatus(StatusNotFound, StatusText(StatusNotFound))
	res.SetBody(nil)
	return res.Flush()
}

func (res *Response) InternalServerError(body []byte) error {
	res.SetStatus(StatusInternalServerError, StatusText(StatusInternalServerError))
	res.SetBody(body)
	return res.Flush()
}

// WithText sets a text/plain content type and flushes body with status 200.
func (res *Response) WithText(body string) error {
	res.SetHeader("Content-Type", "text/plain")
	return res.OK([]byte(body))
}

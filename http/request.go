package http

import (
	"bytes"
	"context"
	"strings"
)

type Request struct {
	Method string
	Path   string

	// Headers holds one value per name; names are case sensitive and a
	// repeated name keeps the last value.
	Headers map[string]string

	// PathVars maps template placeholders (":id") to the matched segment.
	// It is filled by the router once a route matched.
	PathVars map[string]string

	// Route is the matched path template, empty until resolved.
	Route string

	// Body is nil when the request had no header/body separator.
	Body []byte

	// RootDir is injected by the router, never read from the wire.
	RootDir string

	ctx context.Context
}

// ParseRequest builds a Request out of the raw bytes read for one connection.
// It never fails: a missing method, path or header value ends up as an empty
// string.
func ParseRequest(raw []byte) *Request {
	req := Request{
		Headers:  make(map[string]string),
		PathVars: make(map[string]string),
	}

	head := raw
	if i := bytes.Index(raw, headSeparator); i >= 0 {
		head = raw[:i]
		req.Body = raw[i+len(headSeparator):]
	}

	lines := strings.Split(string(head), "\r\n")

	requestLine := strings.Split(lines[0], " ")
	req.Method = firstToken(requestLine, validMethod)
	req.Path = firstToken(requestLine, func(token string) bool {
		return strings.HasPrefix(token, "/")
	})

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}

		name, value, _ := strings.Cut(line, ":")
		req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	return &req
}

func firstToken(tokens []string, match func(string) bool) string {
	for _, token := range tokens {
		if match(token) {
			return token
		}
	}
	return ""
}

// Header returns the value of the named header, or "" when absent.
func (req *Request) Header(name string) string {
	return req.Headers[name]
}

// PathValue returns the segment bound to a template placeholder. The leading
// colon is optional.
func (req *Request) PathValue(name string) string {
	if !strings.HasPrefix(name, ":") {
		name = ":" + name
	}
	return req.PathVars[name]
}

// Context returns the request's context. If nil, returns Background.
func (req *Request) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx
}

// WithContext replaces the request context in place.
func (req *Request) WithContext(ctx context.Context) *Request {
	req.ctx = ctx
	return req
}

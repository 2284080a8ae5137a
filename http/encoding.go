package http

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"strings"
)

var ErrEncodingNotSupported = errors.New("http: encoding not supported")

// Encoder is a content-coding applied to response bodies.
type Encoder interface {
	Name() string
	Encode(content []byte) []byte
}

// GzipEncoder compresses bodies with compress/gzip. A zero Level means the
// default compression level.
type GzipEncoder struct {
	Level int
}

func (GzipEncoder) Name() string {
	return "gzip"
}

// Encode returns the gzip form of content. On any compression failure the
// original bytes are returned unchanged.
func (encoder GzipEncoder) Encode(content []byte) []byte {
	level := encoder.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}

	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return content
	}
	if _, err := gw.Write(content); err != nil {
		return content
	}
	if err := gw.Close(); err != nil {
		return content
	}

	return buf.Bytes()
}

var encoders = map[string]Encoder{
	"gzip": GzipEncoder{},
}

// ResolveEncoder looks up an encoder by its content-coding name.
func ResolveEncoder(name string) (Encoder, error) {
	encoder, found := encoders[name]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrEncodingNotSupported, name)
	}
	return encoder, nil
}

// NegotiateEncoder picks the first supported candidate of an Accept-Encoding
// value. Candidates are taken in the order the client listed them; quality
// values are not interpreted. skipped receives every unsupported candidate.
func NegotiateEncoder(acceptEncoding string, skipped func(name string, err error)) (Encoder, bool) {
	if acceptEncoding == "" {
		return nil, false
	}

	for _, candidate := range strings.Split(acceptEncoding, ",") {
		name := strings.TrimSpace(candidate)
		encoder, err := ResolveEncoder(name)
		if err != nil {
			if skipped != nil {
				skipped(name, err)
			}
			continue
		}
		return encoder, true
	}

	return nil, false
}

package http

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ReadRequest reads from r in chunks of chunkSize bytes until the buffer
// holds a complete request: the header/body separator and, when a
// Content-Length is declared, at least that many body bytes. A peer that
// closes early yields whatever was read so far. Only non-EOF read errors are
// returned.
func ReadRequest(r io.Reader, chunkSize int) ([]byte, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultReadChunkSize
	}

	chunk := make([]byte, chunkSize)
	var buf []byte

	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)

		if requestComplete(buf) {
			return buf, nil
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}

		if n == 0 {
			return buf, nil
		}
	}
}

func requestComplete(buf []byte) bool {
	i := bytes.Index(buf, headSeparator)
	if i < 0 {
		return false
	}

	length, found := contentLength(buf[:i])
	if !found {
		return true
	}

	return len(buf)-(i+len(headSeparator)) >= length
}

// contentLength scans the raw head for a Content-Length header, the last one
// winning. An unparsable or negative value counts as absent so reading never
// blocks on it.
func contentLength(head []byte) (int, bool) {
	var (
		raw   string
		found bool
	)

	lines := strings.Split(string(head), "\r\n")
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			raw = strings.TrimSpace(value)
			found = true
		}
	}
	if !found {
		return 0, false
	}

	length, err := strconv.Atoi(raw)
	if err != nil || length < 0 {
		return 0, false
	}
	return length, true
}

package http

import (
	"testing"

	"github.com/freekieb7/rawhttp/test"
)

func TestRequestParse(t *testing.T) {
	reqMsg := []byte("POST /files/test.txt HTTP/1.1\r\nHost: localhost:4221\r\nUser-Agent: curl/8.4.0\r\nContent-Length: 5\r\n\r\nhello")

	req := ParseRequest(reqMsg)

	test.AssertEqual(t, MethodPost, req.Method)
	test.AssertEqual(t, "/files/test.txt", req.Path)
	test.AssertEqual(t, "localhost:4221", req.Header("Host"))
	test.AssertEqual(t, "curl/8.4.0", req.Header("User-Agent"))
	test.AssertEqual(t, "5", req.Header("Content-Length"))
	test.AssertEqual(t, "hello", string(req.Body))

	if len(req.PathVars) != 0 {
		t.Errorf("Expected no path variables before resolution, got %v", req.PathVars)
	}
}

func TestRequestParseLenient(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		method  string
		path    string
		headers map[string]string
		body    *string
	}{
		{
			name:    "empty",
			raw:     "",
			headers: map[string]string{},
		},
		{
			name:    "unknown method",
			raw:     "BREW /pot HTTP/1.1\r\n\r\n",
			path:    "/pot",
			headers: map[string]string{},
			body:    strPtr(""),
		},
		{
			name:    "missing path",
			raw:     "GET HTTP/1.1\r\n\r\n",
			method:  MethodGet,
			headers: map[string]string{},
			body:    strPtr(""),
		},
		{
			name:    "header without colon",
			raw:     "GET / HTTP/1.1\r\nX-Broken\r\n\r\n",
			method:  MethodGet,
			path:    "/",
			headers: map[string]string{"X-Broken": ""},
			body:    strPtr(""),
		},
		{
			name:    "duplicate header keeps last",
			raw:     "GET / HTTP/1.1\r\nX-Id: 1\r\nX-Id: 2\r\n\r\n",
			method:  MethodGet,
			path:    "/",
			headers: map[string]string{"X-Id": "2"},
			body:    strPtr(""),
		},
		{
			name:    "header names are case sensitive",
			raw:     "GET / HTTP/1.1\r\nuser-agent: a\r\nUser-Agent: b\r\n\r\n",
			method:  MethodGet,
			path:    "/",
			headers: map[string]string{"user-agent": "a", "User-Agent": "b"},
			body:    strPtr(""),
		},
		{
			name:    "lines after separator are body",
			raw:     "GET / HTTP/1.1\r\nHost: a\r\n\r\nX-Body: 1",
			method:  MethodGet,
			path:    "/",
			headers: map[string]string{"Host": "a"},
			body:    strPtr("X-Body: 1"),
		},
		{
			name:    "body kept verbatim",
			raw:     "POST /files/a HTTP/1.1\r\n\r\nline1\r\n\r\nline2",
			method:  MethodPost,
			path:    "/files/a",
			headers: map[string]string{},
			body:    strPtr("line1\r\n\r\nline2"),
		},
		{
			name:    "truncated head",
			raw:     "GET /echo/abc HTTP/1.1\r\nHost: loc",
			method:  MethodGet,
			path:    "/echo/abc",
			headers: map[string]string{"Host": "loc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ParseRequest([]byte(tt.raw))

			test.AssertEqual(t, tt.method, req.Method)
			test.AssertEqual(t, tt.path, req.Path)
			test.AssertEqual(t, tt.headers, req.Headers)

			if tt.body == nil {
				if req.Body != nil {
					t.Errorf("Expected no body, got %q", req.Body)
				}
				return
			}
			if req.Body == nil {
				t.Fatalf("Expected body %q, got none", *tt.body)
			}
			test.AssertEqual(t, *tt.body, string(req.Body))
		})
	}
}

func TestRequestPathValue(t *testing.T) {
	req := ParseRequest([]byte("GET /echo/abc HTTP/1.1\r\n\r\n"))
	req.PathVars[":text"] = "abc"

	test.AssertEqual(t, "abc", req.PathValue("text"))
	test.AssertEqual(t, "abc", req.PathValue(":text"))
	test.AssertEqual(t, "", req.PathValue("missing"))
}

func strPtr(s string) *string {
	return &s
}

func BenchmarkRequestParse(b *testing.B) {
	reqMsg := []byte("GET /test HTTP/1.1\r\nAccept: text/css\r\nConnection: keep-alive\r\nContent-Length: 0\r\n\r\n")

	for b.Loop() {
		ParseRequest(reqMsg)
	}
}

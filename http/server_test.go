package http

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	nethttp "net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/freekieb7/rawhttp/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer() *Server {
	router := NewRouter("")
	router.Logger = discardLogger()
	router.Use(RecoverMiddleware(discardLogger()))

	router.GET("/", func(req *Request, res *Response) {
		res.OK(nil)
	})
	router.GET("/echo/:text", func(req *Request, res *Response) {
		res.SetHeader("Content-Type", "text/plain")
		res.OK([]byte(req.PathValue("text")))
	})
	router.POST("/length", func(req *Request, res *Response) {
		res.WithText(string(req.Body))
	})
	router.GET("/panic", func(req *Request, res *Response) {
		panic("boom")
	})
	router.GET("/silent", func(req *Request, res *Response) {})

	return NewServer("test", router, discardLogger())
}

// roundTrip serves one request over an in-memory pipe.
func roundTrip(t *testing.T, srv *Server, reqStr string) *nethttp.Response {
	t.Helper()

	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.ServeConn(serverConn)
	}()

	if _, err := clientConn.Write([]byte(reqStr)); err != nil {
		t.Fatalf("write error: %v", err)
	}

	resp, err := nethttp.ReadResponse(bufio.NewReader(clientConn), nil)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("body read error: %v", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	<-done
	return resp
}

func readBody(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestServeConnEcho(t *testing.T) {
	resp := roundTrip(t, newTestServer(), "GET /echo/abc HTTP/1.1\r\nHost: localhost\r\n\r\n")

	test.AssertEqual(t, 200, resp.StatusCode)
	test.AssertEqual(t, "text/plain", resp.Header.Get("Content-Type"))
	test.AssertEqual(t, "3", resp.Header.Get("Content-Length"))
	test.AssertEqual(t, "", resp.Header.Get("Content-Encoding"))
	test.AssertEqual(t, "abc", readBody(t, resp))
}

func TestServeConnBody(t *testing.T) {
	resp := roundTrip(t, newTestServer(), "POST /length HTTP/1.1\r\nContent-Length: 11\r\n\r\nhello world")

	test.AssertEqual(t, 200, resp.StatusCode)
	test.AssertEqual(t, "hello world", readBody(t, resp))
}

func TestServeConnNotFound(t *testing.T) {
	resp := roundTrip(t, newTestServer(), "GET /nope HTTP/1.1\r\n\r\n")

	test.AssertEqual(t, 404, resp.StatusCode)
	test.AssertEqual(t, "Not Found", resp.Status[4:])
	test.AssertEqual(t, "", readBody(t, resp))
}

func TestServeConnMalformed(t *testing.T) {
	resp := roundTrip(t, newTestServer(), "garbage\r\n\r\n")

	test.AssertEqual(t, 404, resp.StatusCode)
}

func TestServeConnPanic(t *testing.T) {
	resp := roundTrip(t, newTestServer(), "GET /panic HTTP/1.1\r\n\r\n")

	test.AssertEqual(t, 500, resp.StatusCode)
}

func TestServeConnClosesConnection(t *testing.T) {
	srv := newTestServer()
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	go srv.ServeConn(serverConn)

	if _, err := clientConn.Write([]byte("GET /silent HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatal(err)
	}

	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := clientConn.Read(make([]byte, 1))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("Expected EOF once the handler returned, got n=%d err=%v", n, err)
	}
}

func listen(t *testing.T, srv *Server) (string, chan error) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	return listener.Addr().String(), serveErr
}

func TestServeSlowClientDoesNotBlockOthers(t *testing.T) {
	srv := newTestServer()
	addr, serveErr := listen(t, srv)

	stalled, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stalled.Write([]byte("GET /echo/slow HTTP/1.1\r\n")); err != nil {
		t.Fatal(err)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * time.Second))

	if _, err := conn.Write([]byte("GET /echo/fast HTTP/1.1\r\n\r\n")); err != nil {
		t.Fatal(err)
	}
	resp, err := nethttp.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	test.AssertEqual(t, "fast", readBody(t, resp))

	// Release the stalled connection so shutdown can complete.
	stalled.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	test.AssertNoError(t, srv.Shutdown(ctx))

	if err := <-serveErr; !errors.Is(err, ErrServerClosed) {
		t.Errorf("Expected ErrServerClosed, got %v", err)
	}
}

func TestShutdownWaitsForStalledConnection(t *testing.T) {
	srv := newTestServer()
	addr, serveErr := listen(t, srv)

	stalled, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer stalled.Close()
	if _, err := stalled.Write([]byte("GET / HTTP/1.1\r\n")); err != nil {
		t.Fatal(err)
	}

	// Give the server time to accept the connection.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
	if err := <-serveErr; !errors.Is(err, ErrServerClosed) {
		t.Errorf("Expected ErrServerClosed, got %v", err)
	}
}

func TestServeAfterShutdown(t *testing.T) {
	srv := newTestServer()
	test.AssertNoError(t, srv.Shutdown(context.Background()))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	if err := srv.Serve(listener); !errors.Is(err, ErrServerClosed) {
		t.Errorf("Expected ErrServerClosed, got %v", err)
	}
}

type flakyListener struct {
	net.Listener
	failures atomic.Int32
}

func (l *flakyListener) Accept() (net.Conn, error) {
	if l.failures.Add(-1) >= 0 {
		return nil, errors.New("accept: too many open files")
	}
	return nil, net.ErrClosed
}

func TestServeRetriesFailedAccept(t *testing.T) {
	listener := &flakyListener{Listener: nopListener{}}
	listener.failures.Store(3)

	err := newTestServer().Serve(listener)
	if !errors.Is(err, net.ErrClosed) {
		t.Errorf("Expected net.ErrClosed, got %v", err)
	}
	if got := listener.failures.Load(); got >= 0 {
		t.Errorf("Expected every failure to be retried, %d left", got+1)
	}
}

type nopListener struct{}

func (nopListener) Accept() (net.Conn, error) { return nil, net.ErrClosed }
func (nopListener) Close() error              { return nil }
func (nopListener) Addr() net.Addr            { return &net.TCPAddr{} }

func BenchmarkServeConn(b *testing.B) {
	srv := newTestServer()
	reqStr := []byte("GET /echo/bench HTTP/1.1\r\nHost: localhost\r\n\r\n")

	for b.Loop() {
		serverConn, clientConn := net.Pipe()
		go srv.ServeConn(serverConn)

		if _, err := clientConn.Write(reqStr); err != nil {
			b.Fatalf("write error: %v", err)
		}
		resp, err := nethttp.ReadResponse(bufio.NewReader(clientConn), nil)
		if err != nil {
			b.Fatalf("read error: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		clientConn.Close()
	}
}

package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var ErrServerClosed = errors.New("http: server closed")

type Server struct {
	Name   string
	Router *Router
	Logger *slog.Logger

	// ReadChunkSize is the size of each socket read while waiting for a
	// complete request.
	ReadChunkSize int

	mu          sync.Mutex
	listener    net.Listener
	inShutdown  atomic.Bool
	conns       sync.WaitGroup
	activeConns metric.Int64UpDownCounter
}

func NewServer(name string, router *Router, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	var activeConns metric.Int64UpDownCounter = noop.Int64UpDownCounter{}
	counter, err := otel.Meter(instrumentationName).Int64UpDownCounter("http.server.active_connections",
		metric.WithDescription("Number of connections currently being served."),
		metric.WithUnit("{connection}"))
	if err != nil {
		logger.Warn("creating connection counter failed", "error", err)
	} else {
		activeConns = counter
	}

	return &Server{
		Name:          name,
		Router:        router,
		Logger:        logger,
		ReadChunkSize: DefaultReadChunkSize,
		activeConns:   activeConns,
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	s.Logger.Info("listening", "server", s.Name, "addr", listener.Addr().String())

	return s.Serve(listener)
}

// Serve accepts connections on listener and serves each one on its own
// goroutine. Failed accepts are logged and retried with a growing delay; the
// loop only ends once the server is shut down or the listener is closed.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	if s.inShutdown.Load() {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.listener = listener
	s.mu.Unlock()

	defer listener.Close()

	retry := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(5*time.Millisecond),
		backoff.WithMaxInterval(time.Second),
		backoff.WithMaxElapsedTime(0),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			delay := retry.NextBackOff()
			s.Logger.Error("accepting connection failed", "error", err, "retry_in", delay)
			time.Sleep(delay)
			continue
		}
		retry.Reset()

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.ServeConn(conn)
		}()
	}
}

// ServeConn handles exactly one request on conn and closes it.
func (s *Server) ServeConn(conn net.Conn) {
	ctx := context.Background()
	logger := s.Logger.With("conn_id", uuid.NewString())

	s.activeConns.Add(ctx, 1)
	defer s.activeConns.Add(ctx, -1)

	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("closing connection failed", "error", err)
		}
	}()
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("connection handler panicked", "panic", recovered)
		}
	}()

	raw, err := ReadRequest(conn, s.ReadChunkSize)
	if err != nil {
		logger.Warn("reading request failed", "error", err)
		return
	}

	req := ParseRequest(raw)
	res := NewResponse(conn, req, logger)

	s.Router.Serve(req, res)

	if !res.Flushed() {
		logger.Warn("handler returned without a response", "method", req.Method, "path", req.Path)
	}
}

// Shutdown stops accepting connections and waits for the ones in flight to
// finish, or for ctx to be done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.inShutdown.Store(true)
	var err error
	if s.listener != nil {
		err = s.listener.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

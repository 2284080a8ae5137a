package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/freekieb7/rawhttp/filesystem"
	"github.com/freekieb7/rawhttp/handler"
	"github.com/freekieb7/rawhttp/http"
	"github.com/freekieb7/rawhttp/telemetry"
)

const serviceName = "rawhttp"

type config struct {
	addr       string
	directory  string
	readChunk  int
	telemetry  bool
	logLevel   string
	shutdownIn time.Duration
}

func parseFlags(args []string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.StringVar(&cfg.addr, "addr", "127.0.0.1:4221", "address to listen on")
	fs.StringVar(&cfg.directory, "directory", "", "root directory served by /files/")
	fs.IntVar(&cfg.readChunk, "read-chunk", http.DefaultReadChunkSize, "bytes read from a connection per call")
	fs.BoolVar(&cfg.telemetry, "telemetry", false, "export traces, metrics and logs over OTLP (configured by OTEL_* variables)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.DurationVar(&cfg.shutdownIn, "shutdown-timeout", 5*time.Second, "time allowed for in-flight connections on shutdown")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.directory = handler.NormalizeRootDir(cfg.directory)
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, cfg config) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	level, err := telemetry.ParseLevel(cfg.logLevel)
	if err != nil {
		return err
	}
	logger := telemetry.NewTextLogger(os.Stderr, level)

	if cfg.telemetry {
		var tel *telemetry.Telemetry
		tel, err = telemetry.Setup(ctx, serviceName)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownIn)
			defer cancel()
			err = errors.Join(err, tel.Shutdown(shutdownCtx))
		}()

		logger = tel.Logger(serviceName)
	}
	slog.SetDefault(logger)

	router := http.NewRouter(cfg.directory)
	router.Logger = logger

	tracing, err := http.TracingMiddleware(nil, nil)
	if err != nil {
		return err
	}
	router.Use(tracing, http.LoggingMiddleware(logger), http.RecoverMiddleware(logger))

	handler.Register(router, filesystem.NewLocalFileSystem(), logger)

	server := http.NewServer(serviceName, router, logger)
	server.ReadChunkSize = cfg.readChunk

	serverErrorChannel := make(chan error, 1)
	go func() {
		serverErrorChannel <- server.ListenAndServe(ctx, cfg.addr)
	}()

	select {
	case err := <-serverErrorChannel:
		return err
	case <-ctx.Done():
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownIn)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serverErrorChannel; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

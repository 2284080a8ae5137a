// Package telemetry wires the OpenTelemetry SDK: traces, metrics and logs
// exported over OTLP/gRPC, configured through the standard OTEL_* variables.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
}

// Setup creates the OTLP exporters and installs the providers and the W3C
// propagator as OpenTelemetry globals.
func Setup(ctx context.Context, serviceName string) (*Telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating resource: %w", err)
	}

	spanExporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating trace exporter: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("telemetry: creating metric exporter: %w", err),
			spanExporter.Shutdown(ctx),
		)
	}

	logExporter, err := otlploggrpc.New(ctx)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("telemetry: creating log exporter: %w", err),
			spanExporter.Shutdown(ctx),
			metricExporter.Shutdown(ctx),
		)
	}

	t := New(res,
		sdktrace.WithBatcher(spanExporter),
		sdkmetric.NewPeriodicReader(metricExporter),
		sdklog.NewBatchProcessor(logExporter),
	)
	t.SetGlobal()

	return t, nil
}

// New builds the providers around already constructed exporters.
func New(res *resource.Resource, spans sdktrace.TracerProviderOption, metrics sdkmetric.Reader, logs sdklog.Processor) *Telemetry {
	return &Telemetry{
		TracerProvider: sdktrace.NewTracerProvider(spans, sdktrace.WithResource(res)),
		MeterProvider:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(metrics), sdkmetric.WithResource(res)),
		LoggerProvider: sdklog.NewLoggerProvider(sdklog.WithProcessor(logs), sdklog.WithResource(res)),
	}
}

func (t *Telemetry) SetGlobal() {
	otel.SetTracerProvider(t.TracerProvider)
	otel.SetMeterProvider(t.MeterProvider)
	global.SetLoggerProvider(t.LoggerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Logger returns a slog logger whose records are exported through the
// logger provider.
func (t *Telemetry) Logger(name string) *slog.Logger {
	return otelslog.NewLogger(name, otelslog.WithLoggerProvider(t.LoggerProvider))
}

// Shutdown flushes and stops every provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.TracerProvider.Shutdown(ctx),
		t.MeterProvider.Shutdown(ctx),
		t.LoggerProvider.Shutdown(ctx),
	)
}

// NewTextLogger is the logger used when telemetry export is disabled.
func NewTextLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel accepts debug, info, warn and error, case insensitive.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("telemetry: invalid log level %q", s)
	}
	return level, nil
}

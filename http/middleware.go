package http

import (
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/freekieb7/rawhttp/http"

type Middleware func(next Handler) Handler

// RecoverMiddleware turns a panicking handler into a 500 response, provided
// nothing was written yet.
func RecoverMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next Handler) Handler {
		return func(req *Request, res *Response) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.Error("handler panicked", "method", req.Method, "path", req.Path, "panic", recovered)

					if !res.Flushed() {
						if err := res.InternalServerError(nil); err != nil {
							logger.Error("writing response failed", "error", err)
						}
					}
				}
			}()

			next(req, res)
		}
	}
}

// LoggingMiddleware logs one record per handled request.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next Handler) Handler {
		return func(req *Request, res *Response) {
			start := time.Now()

			next(req, res)

			logger.InfoContext(req.Context(), "request handled",
				"method", req.Method,
				"path", req.Path,
				"route", req.Route,
				"status", res.Status,
				"duration", time.Since(start),
			)
		}
	}
}

// TracingMiddleware starts a server span per request, continuing a trace
// propagated in the request headers, and records the request duration.
// nil providers fall back to the global ones.
func TracingMiddleware(tracerProvider trace.TracerProvider, meterProvider metric.MeterProvider) (Middleware, error) {
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}

	tracer := tracerProvider.Tracer(instrumentationName)
	meter := meterProvider.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return func(next Handler) Handler {
		return func(req *Request, res *Response) {
			start := time.Now()

			ctx := propagator().Extract(req.Context(), HeaderCarrier(req.Headers))

			spanName := req.Method
			if req.Route != "" {
				spanName += " " + req.Route
			}

			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(req.Method),
				semconv.URLPath(req.Path),
			}
			if req.Route != "" {
				attrs = append(attrs, semconv.HTTPRoute(req.Route))
			}
			if userAgent := req.Header("User-Agent"); userAgent != "" {
				attrs = append(attrs, semconv.UserAgentOriginal(userAgent))
			}

			ctx, span := tracer.Start(ctx, spanName,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...))
			defer span.End()

			next(req.WithContext(ctx), res)

			span.SetAttributes(semconv.HTTPResponseStatusCode(res.Status))
			if res.Status >= StatusInternalServerError {
				span.SetStatus(codes.Error, strconv.Itoa(res.Status))
			}

			duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
				semconv.HTTPRequestMethodKey.String(req.Method),
				semconv.HTTPRoute(req.Route),
				semconv.HTTPResponseStatusCode(res.Status),
			))
		}
	}, nil
}

func propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

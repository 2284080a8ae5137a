package http

import (
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

var _ propagation.TextMapCarrier = HeaderCarrier(nil)

// HeaderCarrier exposes request headers to OpenTelemetry propagators. Lookups
// fall back to a case-insensitive match because propagators use lower case
// names ("traceparent").
type HeaderCarrier map[string]string

func (carrier HeaderCarrier) Get(key string) string {
	if value, found := carrier[key]; found {
		return value
	}
	for name, value := range carrier {
		if strings.EqualFold(name, key) {
			return value
		}
	}
	return ""
}

func (carrier HeaderCarrier) Set(key, value string) {
	carrier[key] = value
}

func (carrier HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(carrier))
	for name := range carrier {
		keys = append(keys, name)
	}
	return keys
}

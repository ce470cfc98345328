package telemetry

import (
	"os"
	"strings"
)

// Config is the telemetry configuration read from OTEL_* environment
// variables. See the package comment for the variable list.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP collector endpoint, optionally with an
	// http:// or https:// scheme.
	Endpoint string
	// Protocol selects the exporter: "grpc" or "http/protobuf".
	Protocol string
	// Headers are sent with every export, e.g. an Authorization token.
	Headers map[string]string
	// Insecure skips TLS on the exporter connection.
	Insecure bool

	Sampler    string
	SamplerArg string

	// ResourceAttrs are appended to the trace resource.
	ResourceAttrs map[string]string
}

// LoadFromEnv reads the configuration from the environment.
func LoadFromEnv() *Config {
	return &Config{
		Enabled:        strings.EqualFold(os.Getenv("OTEL_ENABLED"), "true"),
		ServiceName:    envOr("OTEL_SERVICE_NAME", "runtime-analysis"),
		ServiceVersion: envOr("OTEL_SERVICE_VERSION", "unknown"),
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Protocol:       envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		Headers:        parseAttrs(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		Insecure:       strings.EqualFold(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"), "true"),
		Sampler:        os.Getenv("OTEL_TRACES_SAMPLER"),
		SamplerArg:     os.Getenv("OTEL_TRACES_SAMPLER_ARG"),
		ResourceAttrs:  parseAttrs(os.Getenv("OTEL_RESOURCE_ATTRIBUTES")),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseAttrs parses "k1=v1,k2=v2" lists. Values may contain '='; entries
// without a key are dropped.
func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		attrs[key] = strings.TrimSpace(value)
	}
	return attrs
}

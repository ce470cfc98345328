package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc/credentials/insecure"
)

// newExporter creates the OTLP trace exporter for the configured protocol.
// gRPC is the default; "http" and "http/protobuf" select the HTTP exporter.
func newExporter(ctx context.Context, cfg *Config) (*otlptrace.Exporter, error) {
	endpoint, plaintext := splitEndpoint(cfg)

	switch strings.ToLower(cfg.Protocol) {
	case "http/protobuf", "http":
		opts := []otlptracehttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		if plaintext {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)

	default:
		opts := []otlptracegrpc.Option{}
		if endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
		}
		if plaintext {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
		}
		return otlptracegrpc.New(ctx, opts...)
	}
}

// splitEndpoint strips the scheme from the configured endpoint, since the
// exporters take host:port, and reports whether the connection should skip
// TLS. An explicit http:// scheme implies plaintext, as does the insecure
// flag.
func splitEndpoint(cfg *Config) (endpoint string, plaintext bool) {
	endpoint = cfg.Endpoint
	plaintext = cfg.Insecure
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint = rest
		plaintext = true
	} else if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint = rest
	}
	return endpoint, plaintext
}

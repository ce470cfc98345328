// Package telemetry wires OpenTelemetry tracing for the profiler.
//
// Everything is driven by the standard OTEL_* environment variables, so a
// profiling box opts in without touching the config file:
//
//	OTEL_ENABLED                 enable tracing (default: false)
//	OTEL_SERVICE_NAME            service name (default: runtime-analysis)
//	OTEL_SERVICE_VERSION         service version (default: unknown)
//	OTEL_EXPORTER_OTLP_ENDPOINT  collector endpoint
//	OTEL_EXPORTER_OTLP_PROTOCOL  grpc or http/protobuf (default: grpc)
//	OTEL_EXPORTER_OTLP_HEADERS   exporter headers, k=v comma separated
//	OTEL_EXPORTER_OTLP_INSECURE  skip TLS (default: false)
//	OTEL_TRACES_SAMPLER          sampler name (default: always_on)
//	OTEL_TRACES_SAMPLER_ARG      sampler argument
//	OTEL_RESOURCE_ATTRIBUTES     extra resource attributes, k=v pairs
//
// Init installs the global TracerProvider; callers then trace through
// otel.Tracer as usual. When disabled, the default no-op provider stays in
// place and spans cost nothing.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"
)

var (
	globalConfig *Config
	configOnce   sync.Once
)

// ShutdownFunc flushes and stops the TracerProvider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(_ context.Context) error { return nil }

// Init sets up the global TracerProvider from the environment. Safe to
// call more than once; only the first call installs a provider.
func Init(ctx context.Context) (ShutdownFunc, error) {
	cfg := loadConfig()
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
		trace.WithSampler(newSampler(cfg)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// Enabled reports whether tracing is turned on. Used to gate optional
// instrumentation such as the database tracing plugin.
func Enabled() bool {
	return loadConfig().Enabled
}

// GetConfig returns the cached telemetry configuration.
func GetConfig() *Config {
	return loadConfig()
}

func loadConfig() *Config {
	configOnce.Do(func() {
		globalConfig = LoadFromEnv()
	})
	return globalConfig
}

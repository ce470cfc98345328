package telemetry

import (
	"strconv"

	"go.opentelemetry.io/otel/sdk/trace"
)

// newSampler maps OTEL_TRACES_SAMPLER onto an SDK sampler. Profiling runs
// are few and each span is one whole snapshot pass, so the default is to
// keep everything.
func newSampler(cfg *Config) trace.Sampler {
	switch cfg.Sampler {
	case "always_off":
		return trace.NeverSample()
	case "traceidratio":
		return trace.TraceIDRatioBased(samplerRatio(cfg.SamplerArg))
	case "parentbased_always_on":
		return trace.ParentBased(trace.AlwaysSample())
	case "parentbased_always_off":
		return trace.ParentBased(trace.NeverSample())
	case "parentbased_traceidratio":
		return trace.ParentBased(trace.TraceIDRatioBased(samplerRatio(cfg.SamplerArg)))
	default:
		// always_on, unset, and anything unrecognized
		return trace.AlwaysSample()
	}
}

// samplerRatio parses OTEL_TRACES_SAMPLER_ARG, clamped to [0, 1].
// Unparseable values sample everything rather than silently dropping
// traces.
func samplerRatio(s string) float64 {
	ratio, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1
	}
	return min(max(ratio, 0), 1)
}

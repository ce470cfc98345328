package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/sdk/trace"
)

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name    string
		sampler string
		arg     string
		want    trace.Sampler
	}{
		{"Default", "", "", trace.AlwaysSample()},
		{"AlwaysOn", "always_on", "", trace.AlwaysSample()},
		{"AlwaysOff", "always_off", "", trace.NeverSample()},
		{"Ratio", "traceidratio", "0.5", trace.TraceIDRatioBased(0.5)},
		{"ParentAlwaysOn", "parentbased_always_on", "", trace.ParentBased(trace.AlwaysSample())},
		{"ParentAlwaysOff", "parentbased_always_off", "", trace.ParentBased(trace.NeverSample())},
		{"ParentRatio", "parentbased_traceidratio", "0.1", trace.ParentBased(trace.TraceIDRatioBased(0.1))},
		{"Unrecognized", "head_based", "", trace.AlwaysSample()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newSampler(&Config{Sampler: tt.sampler, SamplerArg: tt.arg})
			assert.Equal(t, tt.want.Description(), got.Description())
		})
	}
}

func TestSamplerRatio(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"Empty", "", 1},
		{"Half", "0.5", 0.5},
		{"Zero", "0", 0},
		{"One", "1", 1},
		{"Tiny", "0.001", 0.001},
		{"Garbage", "most", 1},
		{"ClampedLow", "-0.5", 0},
		{"ClampedHigh", "1.5", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, samplerRatio(tt.input))
		})
	}
}

package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetConfig clears the cached config so each test re-reads the
// environment.
func resetConfig() {
	globalConfig = nil
	configOnce = sync.Once{}
}

func TestInit_Disabled(t *testing.T) {
	clearOtelEnv(t)
	resetConfig()
	t.Cleanup(resetConfig)

	ctx := context.Background()
	shutdown, err := Init(ctx)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(ctx))
}

func TestEnabled(t *testing.T) {
	clearOtelEnv(t)
	resetConfig()
	t.Cleanup(resetConfig)

	assert.False(t, Enabled())
}

func TestGetConfig(t *testing.T) {
	clearOtelEnv(t)
	resetConfig()
	t.Cleanup(resetConfig)
	t.Setenv("OTEL_SERVICE_NAME", "heap-profiler")

	cfg := GetConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "heap-profiler", cfg.ServiceName)
}

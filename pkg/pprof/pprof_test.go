package pprof

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	t.Run("WithDir", func(t *testing.T) {
		c := NewCollector("/tmp/profiles")
		assert.Equal(t, "/tmp/profiles", c.OutputDir())
	})

	t.Run("DefaultDir", func(t *testing.T) {
		c := NewCollector("")
		assert.Equal(t, "./pprof", c.OutputDir())
	})
}

func TestCollector_StartStop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pprof")
	c := NewCollector(dir)

	require.NoError(t, c.Start())
	require.NoError(t, c.Stop())

	for _, name := range []string{"cpu.pprof", "heap.pprof"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestCollector_StopWithoutStart(t *testing.T) {
	c := NewCollector(t.TempDir())
	assert.NoError(t, c.Stop())
}

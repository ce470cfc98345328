package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	// Create a minimal config file
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
storage:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Check default values
	assert.Equal(t, "1.0.0", cfg.Profiler.Version)
	assert.Equal(t, "./data", cfg.Profiler.DataDir)
	assert.Equal(t, 10, cfg.Profiler.MaxCoarserPasses)
	assert.Equal(t, 32, cfg.Profiler.MaxRetainersPerLine)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "./runtime-analysis.db", cfg.Database.Path)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
profiler:
  version: "2.0.0"
  data_dir: "/tmp/data"
  max_coarser_passes: 4
  max_retainers_per_line: 16
database:
  type: postgres
  host: db.example.com
  port: 5432
  database: runtime_analysis
  user: admin
  password: secret
storage:
  type: local
  local_path: /tmp/storage
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", cfg.Profiler.Version)
	assert.Equal(t, "/tmp/data", cfg.Profiler.DataDir)
	assert.Equal(t, 4, cfg.Profiler.MaxCoarserPasses)
	assert.Equal(t, 16, cfg.Profiler.MaxRetainersPerLine)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "runtime_analysis", cfg.Database.Database)
}

func TestLoad_InvalidDatabaseType(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: oracle
  host: localhost
storage:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

// Note: Storage validation tests live in internal/storage package

func TestLoad_COSWithCredentials(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: postgres
  host: localhost
storage:
  type: cos
  bucket: test-bucket
  region: ap-guangzhou
  secret_id: test-id
  secret_key: test-key
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, "cos", cfg.Storage.Type)
	assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
}

func TestValidate_EmptyHost(t *testing.T) {
	cfg := &Config{
		Profiler: ProfilerConfig{
			MaxCoarserPasses:    10,
			MaxRetainersPerLine: 32,
		},
		Database: DatabaseConfig{
			Type: "postgres",
			Host: "",
		},
		Storage: StorageConfig{
			Type: "local",
		},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database host is required")
}

func TestValidate_SQLiteRequiresPath(t *testing.T) {
	cfg := &Config{
		Profiler: ProfilerConfig{
			MaxCoarserPasses:    10,
			MaxRetainersPerLine: 32,
		},
		Database: DatabaseConfig{
			Type: "sqlite",
		},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database path is required")
}

func TestValidate_InvalidProfilerTuning(t *testing.T) {
	cfg := &Config{
		Profiler: ProfilerConfig{
			MaxCoarserPasses:    0,
			MaxRetainersPerLine: 32,
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: "./test.db",
		},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max coarser passes")
}

func TestReportPath(t *testing.T) {
	cfg := &Config{
		Profiler: ProfilerConfig{
			DataDir: "/tmp/data",
		},
	}

	assert.Equal(t, "/tmp/data/sample-123.json", cfg.ReportPath("sample-123.json"))
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "profiler", "data")

	cfg := &Config{
		Profiler: ProfilerConfig{
			DataDir: dataDir,
		},
	}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(dataDir)
	assert.NoError(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	// Should not return error, use defaults
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
database:
  type: mysql
  host: mysql.local
storage:
  type: local
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, "mysql.local", cfg.Database.Host)
}

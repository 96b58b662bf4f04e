package quarry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "none", cfg.Logging.Format)
	assert.Equal(t, 16, cfg.Execution.InTermThreshold)
	assert.False(t, cfg.Execution.ForceScalar)
	assert.Zero(t, cfg.Limits.MaxConcurrentSearchers)
}

func TestParseConfigYAML(t *testing.T) {
	data := []byte(`
logging:
  level: debug
  format: json
execution:
  forceScalar: true
  disableSpecialization: true
  inTermThreshold: 4
limits:
  maxConcurrentSearchers: 8
  searchersPerSecond: 100
  sortMemoryLimitBytes: 1048576
`)
	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Logging:   LoggingConfig{Level: "debug", Format: "json"},
		Execution: ExecutionConfig{ForceScalar: true, DisableSpecialization: true, InTermThreshold: 4},
		Limits:    LimitsConfig{MaxConcurrentSearchers: 8, SearchersPerSecond: 100, SortMemoryLimitBytes: 1 << 20},
	}, *cfg)
}

func TestParseConfigEnvOverrides(t *testing.T) {
	t.Setenv("QUARRY_LOG_LEVEL", "warn")
	t.Setenv("QUARRY_FORCE_SCALAR", "true")
	t.Setenv("QUARRY_IN_TERM_THRESHOLD", "32")
	t.Setenv("QUARRY_MAX_CONCURRENT_SEARCHERS", "2")
	t.Setenv("QUARRY_SORT_MEMORY_LIMIT_BYTES", "not-a-number")

	cfg, err := ParseConfig([]byte("limits:\n  sortMemoryLimitBytes: 512\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Execution.ForceScalar)
	assert.Equal(t, 32, cfg.Execution.InTermThreshold)
	assert.Equal(t, int64(2), cfg.Limits.MaxConcurrentSearchers)
	assert.Equal(t, int64(512), cfg.Limits.SortMemoryLimitBytes)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := ParseConfig([]byte("logging:\n  level: loud\n"))
	require.ErrorContains(t, err, "loud")

	_, err = ParseConfig([]byte("limits: [1, 2"))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("execution:\n  inTermThreshold: 3\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Execution.InTermThreshold)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Execution.InTermThreshold)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfigOptions(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
logging:
  format: text
execution:
  forceScalar: true
  disableSpecialization: true
  inTermThreshold: 5
limits:
  maxConcurrentSearchers: 3
  searchersPerSecond: 50
  sortMemoryLimitBytes: 4096
`))
	require.NoError(t, err)

	ix, err := Open(newProductIndex(t), cfg.Options()...)
	require.NoError(t, err)
	assert.True(t, ix.opts.forceScalar)
	assert.False(t, ix.opts.specialize)
	assert.Equal(t, 5, ix.opts.inTermThreshold)
	assert.Equal(t, int64(3), ix.opts.maxSearchers)
	assert.InDelta(t, 50, ix.opts.searchersPerSec, 1e-9)
	assert.Equal(t, int64(4096), ix.opts.sortMemoryLimit)
	assert.NotNil(t, ix.logger)

	s, err := ix.Searcher(t.Context())
	require.NoError(t, err)
	defer s.Close()
	assert.False(t, s.IsAccelerated())
}

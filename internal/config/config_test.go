package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "model", cfg.Paths.ModelDir)
	assert.Equal(t, "cue", cfg.Paths.CueBinary)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 2.0, cfg.HTTP.BackoffBase)
	assert.Equal(t, 4, cfg.Runner.Concurrency)
	assert.Equal(t, 30, cfg.Runner.StaleDays)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.RequestDelay())
	assert.Equal(t, 30*24*time.Hour, cfg.StaleAge())
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
paths:
  model_dir: /tmp/model
  data_dir: /tmp/data
  cue_binary: /usr/local/bin/cue
http:
  timeout_seconds: 45
  max_retries: 5
  backoff_base: 1.5
  request_delay_ms: 250
runner:
  concurrency: 8
  stale_days: 7
sources:
  omim_api_key: secret
  string_min_score: 400
server:
  port: 9090
logging:
  development: true
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/model", cfg.Paths.ModelDir)
	assert.Equal(t, 45, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.Equal(t, 1.5, cfg.HTTP.BackoffBase)
	assert.Equal(t, 8, cfg.Runner.Concurrency)
	assert.Equal(t, 7, cfg.Runner.StaleDays)
	assert.Equal(t, "secret", cfg.Sources.OMIMAPIKey)
	assert.Equal(t, 400, cfg.Sources.StringMinScore)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Logging.Development)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("ZeroTimeout", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.TimeoutSeconds = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("BackoffBaseNotAboveOne", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.BackoffBase = 1.0
		assert.Error(t, cfg.Validate())
	})

	t.Run("ZeroConcurrency", func(t *testing.T) {
		cfg := base()
		cfg.Runner.Concurrency = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("EmptyModelDir", func(t *testing.T) {
		cfg := base()
		cfg.Paths.ModelDir = ""
		assert.Error(t, cfg.Validate())
	})
}

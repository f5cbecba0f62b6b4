package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const sample = `
logging:
  level: debug
retry:
  maxAttempts: 3
  initialInterval: 100ms
  maxInterval: 2s
metrics:
  address: ":9110"
lockFile: $(CUBEFS_TEST_DIR)/cubefs.lock
jobs:
  - name: reports
    operation: copy
    source: $(CUBEFS_TEST_DIR)/in
    destination: /backup/reports
    versioned: true
    retention:
      keep: 7
    watch:
      mode: poll
      pollInterval: 2s
      ignore: ["**/*.tmp"]
    schedule: "0 3 * * *"
  - name: inbox
    operation: move
    source: /drop
    destination: /inbox
`

func TestLoad(t *testing.T) {
	t.Setenv("CUBEFS_TEST_DIR", "/srv/data")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.InitialInterval)
	assert.Equal(t, ":9110", cfg.Metrics.Address)
	assert.Equal(t, "/srv/data/cubefs.lock", cfg.LockFile)
	require.Len(t, cfg.Jobs, 2)

	reports, ok := cfg.Job("reports")
	require.True(t, ok)
	assert.Equal(t, "/srv/data/in", reports.Source)
	assert.True(t, reports.Versioned)
	assert.Equal(t, 7, reports.Retention.Keep)
	assert.Equal(t, WatchPoll, reports.Watch.Mode)
	assert.Equal(t, 2*time.Second, reports.Watch.PollInterval)
	assert.Equal(t, 500*time.Millisecond, reports.Watch.DebounceWindow)
	assert.Equal(t, []string{"**/*.tmp"}, reports.Watch.Ignore)

	inbox, ok := cfg.Job("inbox")
	require.True(t, ok)
	assert.Equal(t, OperationMove, inbox.Operation)
	assert.Equal(t, WatchAuto, inbox.Watch.Mode)

	_, ok = cfg.Job("missing")
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsBadYAML(t *testing.T) {
	_, err := Parse([]byte("jobs: [unterminated"))
	assert.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	_, err := Parse([]byte(`
retry:
  initialInterval: 1m
  maxInterval: 1s
jobs:
  - name: a
    operation: sync
    source: /x
    destination: /x
  - name: a
    source: /y
    destination: /z
    retention:
      keep: 2
    watch:
      mode: inotify
      ignore: ["[bad"]
    schedule: "every day"
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Len(t, multierr.Errors(err), 8)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxInterval)
	assert.NotEmpty(t, cfg.LockFile)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CUBEFS_CONFIG", "/etc/cubefs.yaml")
	t.Setenv("CUBEFS_LOG_LEVEL", "warn")
	t.Setenv("CUBEFS_METRICS_ADDR", ":9999")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "/etc/cubefs.yaml", env.Config)

	cfg := Default()
	env.Apply(cfg)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":9999", cfg.Metrics.Address)
}

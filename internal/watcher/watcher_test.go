package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/config"
	"github.com/cube-soft/cube.core-sub000/internal/fs"
	"github.com/cube-soft/cube.core-sub000/internal/fsprobe"
	"github.com/cube-soft/cube.core-sub000/internal/mailbox"
	"github.com/cube-soft/cube.core-sub000/internal/worker"
)

func jobConfig(source, mode string) config.JobConfig {
	return config.JobConfig{
		Name:        "test",
		Operation:   config.OperationCopy,
		Source:      source,
		Destination: filepath.Join(filepath.Dir(source), "out"),
		Watch: config.WatchConfig{
			Mode:           mode,
			PollInterval:   20 * time.Millisecond,
			DebounceWindow: 20 * time.Millisecond,
			Ignore:         []string{"**/*.tmp", "cache"},
		},
	}
}

func waitJob(t *testing.T, mb *mailbox.Mailbox[worker.Job]) worker.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	job, err := mb.Take(ctx)
	require.NoError(t, err, "no job triggered")
	return job
}

func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
}

func TestScanIgnoresPatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("123"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.tmp"), []byte("123456"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cache"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache", "c.bin"), []byte("1"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "d.txt"), []byte("12"), 0o644))

	st, err := scan(context.Background(), dir, "", []string{"**/*.tmp", "cache"})
	require.NoError(t, err)
	assert.Equal(t, 2, st.count)
	assert.EqualValues(t, 5, st.size)
}

func TestScanSingleFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db.sqlite"), []byte("1234"), 0o644))

	st, err := scan(context.Background(), dir, "db.sqlite", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, st.count)
	assert.EqualValues(t, 4, st.size)
}

func TestIgnored(t *testing.T) {
	patterns := []string{"**/*.tmp", "cache/**"}
	assert.True(t, ignored("/src", "/src/x/y.tmp", patterns))
	assert.True(t, ignored("/src", "/src/cache/z", patterns))
	assert.False(t, ignored("/src", "/src/x/y.txt", patterns))
	assert.False(t, ignored("/src", "/src/x/y.txt", nil))
}

func TestPollingTriggersOnChange(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	mb := mailbox.New[worker.Job]()
	w := New(jobConfig(dir, config.WatchPoll), fs.New(), zap.NewNop(), mb)
	start(t, w)

	time.Sleep(60 * time.Millisecond)
	assert.False(t, mb.HasJob())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644))
	job := waitJob(t, mb)
	assert.Equal(t, "test", job.Name)
	assert.Equal(t, "watch", job.Reason)
}

func TestPollingSkipsIgnoredFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	mb := mailbox.New[worker.Job]()
	w := New(jobConfig(dir, config.WatchPoll), fs.New(), zap.NewNop(), mb)
	start(t, w)

	time.Sleep(40 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.tmp"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.False(t, mb.HasJob())
}

func TestFsNotifyTriggersOnNestedChange(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	if r := fsprobe.Probe(fs.New(), dir); !r.FsnotifySupported {
		t.Skipf("fsnotify unsupported: %s", r.Reason)
	}

	mb := mailbox.New[worker.Job]()
	w := New(jobConfig(dir, config.WatchFSNotify), fs.New(), zap.NewNop(), mb)
	start(t, w)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "a.txt"), []byte("x"), 0o644))
	job := waitJob(t, mb)
	assert.Equal(t, "watch", job.Reason)
}

func TestOffModeNeverTriggers(t *testing.T) {
	dir := t.TempDir()
	mb := mailbox.New[worker.Job]()
	w := New(jobConfig(dir, config.WatchOff), fs.New(), zap.NewNop(), mb)
	start(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	time.Sleep(60 * time.Millisecond)
	assert.False(t, mb.HasJob())
}

func TestUpdateConfigRestarts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	mb := mailbox.New[worker.Job]()
	cfg := jobConfig(dir, config.WatchOff)
	w := New(cfg, fs.New(), zap.NewNop(), mb)
	start(t, w)

	cfg.Watch.Mode = config.WatchPoll
	w.UpdateConfig(cfg)
	time.Sleep(60 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	waitJob(t, mb)
}

func TestUnknownModeFails(t *testing.T) {
	w := New(jobConfig(t.TempDir(), "inotify"), fs.New(), zap.NewNop(), mailbox.New[worker.Job]())
	assert.Error(t, w.Start(context.Background()))
}

// Package watcher monitors a job's source and triggers the job when the
// source changes.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/config"
	"github.com/cube-soft/cube.core-sub000/internal/fs"
	"github.com/cube-soft/cube.core-sub000/internal/fsprobe"
	"github.com/cube-soft/cube.core-sub000/internal/mailbox"
	"github.com/cube-soft/cube.core-sub000/internal/worker"
)

// Watcher observes one source (a directory tree or a single file) and puts
// a worker.Job into the mailbox when it changes.
type Watcher struct {
	mu sync.RWMutex

	job       string
	source    string
	mode      string
	interval  time.Duration
	debounce  time.Duration
	stability time.Duration
	ignore    []string

	host fs.FS
	log  *zap.Logger

	last   state
	reload chan struct{}

	mb  *mailbox.Mailbox[worker.Job]
	now func() time.Time
}

// New creates a watcher from the job configuration.
func New(cfg config.JobConfig, host fs.FS, log *zap.Logger, mb *mailbox.Mailbox[worker.Job]) *Watcher {
	w := &Watcher{
		host:   host,
		log:    log.With(zap.String("job", cfg.Name)),
		reload: make(chan struct{}, 1),
		mb:     mb,
		now:    time.Now,
	}
	w.apply(cfg)
	return w
}

// Start watches until ctx is done, restarting whenever UpdateConfig changes
// what or how to watch.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- w.run(runCtx) }()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		case <-w.reload:
			cancel()
			<-done
			w.log.Info("watcher restarting with new configuration")
		case err := <-done:
			cancel()
			return err
		}
	}
}

// run chooses the correct watching strategy based on config.
func (w *Watcher) run(ctx context.Context) error {
	w.mu.RLock()
	mode := w.mode
	dir, _ := w.root()
	w.mu.RUnlock()

	switch mode {
	case config.WatchFSNotify:
		return w.startFsNotify(ctx)

	case config.WatchPoll:
		w.startPolling(ctx)
		return nil

	case config.WatchAuto:
		res := fsprobe.Probe(w.host, dir)
		if res.FsnotifySupported {
			return w.startFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled, polling", zap.String("reason", res.Reason))
		w.startPolling(ctx)
		return nil

	case config.WatchOff:
		<-ctx.Done()
		return nil

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// root returns the directory to watch and, for a single-file source, the
// only name within it that matters. Callers hold mu.
func (w *Watcher) root() (dir, only string) {
	info, err := w.host.Stat(w.source)
	if err == nil && !info.IsDir {
		return filepath.Dir(w.source), filepath.Base(w.source)
	}
	return w.source, ""
}

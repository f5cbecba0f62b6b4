package watcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/worker"
)

// detect triggers the job if the source changed since the last scan.
func (w *Watcher) detect(ctx context.Context) {
	st, err := w.scanSource(ctx)
	if err != nil {
		w.log.Debug("scan failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	changed := st != w.last
	w.last = st
	w.mu.Unlock()

	if changed {
		w.trigger("watch")
	}
}

// trigger submits a job run, replacing any run still pending.
func (w *Watcher) trigger(reason string) {
	w.mu.RLock()
	name := w.job
	w.mu.RUnlock()

	w.mb.Put(worker.Job{Name: name, Reason: reason, At: w.now()})
	w.log.Debug("job triggered", zap.String("reason", reason))
}

package watcher

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// startPolling triggers detect() on a fixed interval. The first scan only
// records the baseline.
func (w *Watcher) startPolling(ctx context.Context) {
	w.mu.RLock()
	interval := w.interval
	w.mu.RUnlock()

	if st, err := w.scanSource(ctx); err == nil {
		w.mu.Lock()
		w.last = st
		w.mu.Unlock()
	}
	w.log.Debug("polling", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.isSourceStable(ctx) {
				w.detect(ctx)
			}
		}
	}
}

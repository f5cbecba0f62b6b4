package watcher

import (
	"context"
	"time"
)

// isSourceStable reports whether the source stays unchanged for the
// stability window, so a file still being written is not picked up half
// done. A zero window is always stable.
func (w *Watcher) isSourceStable(ctx context.Context) bool {
	w.mu.RLock()
	stability := w.stability
	w.mu.RUnlock()

	if stability <= 0 {
		return true
	}

	st1, err := w.scanSource(ctx)
	if err != nil {
		return false
	}

	select {
	case <-ctx.Done():
		return false
	case <-time.After(stability):
	}

	st2, err := w.scanSource(ctx)
	if err != nil {
		return false
	}

	return st1 == st2
}

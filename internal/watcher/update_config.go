package watcher

import (
	"slices"

	"github.com/cube-soft/cube.core-sub000/internal/config"
)

// UpdateConfig updates watcher fields atomically for hot‑reload. A change
// of source, mode or ignore patterns restarts the running strategy.
func (w *Watcher) UpdateConfig(cfg config.JobConfig) {
	w.mu.RLock()
	restart := cfg.Source != w.source ||
		cfg.Watch.Mode != w.mode ||
		cfg.Watch.PollInterval != w.interval ||
		!slices.Equal(cfg.Watch.Ignore, w.ignore)
	w.mu.RUnlock()

	w.apply(cfg)

	if restart {
		select {
		case w.reload <- struct{}{}:
		default:
		}
	}
}

func (w *Watcher) apply(cfg config.JobConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cfg.Source != w.source {
		w.last = state{}
	}

	w.job = cfg.Name
	w.source = cfg.Source
	w.mode = cfg.Watch.Mode
	w.interval = cfg.Watch.PollInterval
	w.debounce = cfg.Watch.DebounceWindow
	w.stability = cfg.Watch.StabilityWindow
	w.ignore = append([]string(nil), cfg.Watch.Ignore...)
}

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// state summarises a source tree; any write, create or delete changes it.
type state struct {
	latest time.Time
	size   int64
	count  int
}

// scanSource walks the current source.
func (w *Watcher) scanSource(ctx context.Context) (state, error) {
	w.mu.RLock()
	dir, only := w.root()
	ignore := append([]string(nil), w.ignore...)
	w.mu.RUnlock()

	return scan(ctx, dir, only, ignore)
}

// scan walks dir concurrently and folds every non-ignored file into a
// state. When only is set, just that name directly inside dir counts.
func scan(ctx context.Context, dir, only string, ignore []string) (state, error) {
	if only != "" {
		st, err := os.Stat(filepath.Join(dir, only))
		if err != nil {
			return state{}, err
		}
		return state{latest: st.ModTime(), size: st.Size(), count: 1}, nil
	}

	var (
		mu  sync.Mutex
		out state
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // Skip errors
		}
		if p != dir && ignored(dir, p, ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		out.count++
		out.size += info.Size()
		if info.ModTime().After(out.latest) {
			out.latest = info.ModTime()
		}
		return nil
	})
	return out, err
}

// ignored reports whether path, relative to root, matches one of the
// doublestar patterns.
func ignored(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

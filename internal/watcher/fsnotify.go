package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// startFsNotify triggers the job when fsnotify reports relevant changes.
// Directory trees are watched recursively; directories created later are
// added as they appear.
func (w *Watcher) startFsNotify(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	w.mu.RLock()
	dir, only := w.root()
	debounce := w.debounce
	ignore := append([]string(nil), w.ignore...)
	w.mu.RUnlock()

	if only != "" {
		err = watcher.Add(dir)
	} else {
		err = addRecursive(watcher, dir, dir, ignore)
	}
	if err != nil {
		return err
	}
	w.log.Debug("fsnotify watching", zap.String("dir", dir), zap.Int("watches", len(watcher.WatchList())))

	// Channel to request debounce resets
	resetCh := make(chan struct{}, 1)
	defer close(resetCh)

	// Debounce goroutine
	go func() {
		var t *time.Timer
		for range resetCh {
			if t != nil {
				t.Stop()
			}
			t = time.AfterFunc(debounce, func() {
				defer func() {
					if r := recover(); r != nil {
						w.log.Error("trigger panic", zap.Any("panic", r))
					}
				}()
				if ctx.Err() == nil && w.isSourceStable(ctx) {
					w.trigger("watch")
				}
			})
		}
		if t != nil {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				w.log.Error("events channel closed")
				return nil
			}

			w.log.Debug("event", zap.String("name", ev.Name), zap.Stringer("op", ev.Op))

			if only != "" {
				if filepath.Base(ev.Name) != only {
					continue
				}
			} else if ignored(dir, ev.Name, ignore) {
				continue
			}

			if ev.Has(fsnotify.Create) && only == "" {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := addRecursive(watcher, dir, ev.Name, ignore); err != nil {
						w.log.Warn("cannot watch new directory", zap.String("dir", ev.Name), zap.Error(err))
					}
				}
			}

			// Non-blocking send to reset debounce
			select {
			case resetCh <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("fsnotify error", zap.Error(err))
		}
	}
}

// addRecursive adds start and every non-ignored directory below it.
func addRecursive(watcher *fsnotify.Watcher, root, start string, ignore []string) error {
	if err := watcher.Add(start); err != nil {
		return err
	}
	conf := fastwalk.Config{Follow: false}
	return fastwalk.Walk(&conf, start, func(p string, d os.DirEntry, err error) error {
		if err != nil || p == start || !d.IsDir() {
			return nil
		}
		if p != root && ignored(root, p, ignore) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

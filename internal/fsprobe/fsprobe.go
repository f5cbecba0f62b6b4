// Package fsprobe checks whether fsnotify works reliably for a directory.
// It performs a real create+rename test to ensure events are delivered.
package fsprobe

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
)

// Result reports whether fsnotify is usable and why.
type Result struct {
	FsnotifySupported bool   // true if events are delivered
	Reason            string // explanation when unsupported
}

// Timeout bounds how long Probe waits for the first event.
var Timeout = 200 * time.Millisecond

// Probe tests whether fsnotify reliably reports rename events in dir,
// creating its scratch files through host.
func Probe(host fs.FS, dir string) Result {
	st, err := host.Stat(dir)
	if err != nil {
		return Result{false, fmt.Sprintf("stat failed: %v", err)}
	}
	if !st.IsDir {
		return Result{false, "not a directory"}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Result{false, fmt.Sprintf("fsnotify unavailable: %v", err)}
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return Result{false, fmt.Sprintf("cannot watch directory: %v", err)}
	}

	id := uuid.NewString()
	tmp := filepath.Join(dir, ".cubefs-probe-"+id+".tmp")
	final := filepath.Join(dir, ".cubefs-probe-"+id)

	// Create temp file.
	f, err := host.Create(tmp)
	if err != nil {
		return Result{false, fmt.Sprintf("cannot create temp file: %v", err)}
	}
	f.Close()

	// Rename temp → final to trigger a rename event.
	if err := host.Rename(tmp, final); err != nil {
		host.Remove(tmp)
		return Result{false, fmt.Sprintf("rename failed: %v", err)}
	}
	defer host.Remove(final)

	// Wait briefly for events.
	timeout := time.After(Timeout)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return Result{false, "watcher closed"}
			}
			if ev.Op&(fsnotify.Rename|fsnotify.Create|fsnotify.Write) != 0 {
				return Result{true, ""}
			}
		case <-timeout:
			return Result{false, "no events received (rename not reported)"}
		}
	}
}

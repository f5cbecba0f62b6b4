package engine

import (
	"go.uber.org/multierr"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
)

// tally folds the results of a tree walk: ok only when every leaf was, with
// every propagated error kept.
type tally struct {
	ok  bool
	err error
}

func newTally() *tally {
	return &tally{ok: true}
}

func (t *tally) add(ok bool, err error) {
	t.ok = t.ok && ok && err == nil
	t.err = multierr.Append(t.err, err)
}

func (t *tally) result() (bool, error) {
	return t.ok, t.err
}

// Delete removes the file or directory at path. Directories are emptied
// bottom-up first. Protected attributes are cleared right before each
// removal. Deleting a missing path succeeds.
func (e *Engine) Delete(path string) (bool, error) {
	if path == "" {
		return false, invalid("delete", path)
	}
	s := e.Get(path)
	if !s.Exists {
		return true, nil
	}
	if s.IsDirectory {
		return e.deleteTree(s.FullName, s.Attributes)
	}
	return e.remove(s.FullName, s.Attributes)
}

func (e *Engine) deleteTree(dir string, attrs fs.Attributes) (bool, error) {
	t := newTally()
	files, dirs := e.children(dir)
	for _, f := range files {
		t.add(e.remove(f.Path, f.Attributes))
	}
	for _, d := range dirs {
		t.add(e.deleteTree(d.Path, d.Attributes))
	}
	if !t.ok {
		return t.result()
	}
	t.add(e.remove(dir, attrs))
	return t.result()
}

// remove deletes one file or empty directory.
func (e *Engine) remove(path string, attrs fs.Attributes) (bool, error) {
	if attrs.Protected() {
		if ok, err := e.SetAttributes(path, fs.Normal); !ok {
			return false, err
		}
	}
	return e.do("Delete", func() error { return e.fs.Remove(path) }, path)
}

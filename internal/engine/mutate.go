package engine

import (
	"io"
	"path/filepath"
	"time"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
)

// CreateDirectory creates path and any missing parents.
func (e *Engine) CreateDirectory(path string) (bool, error) {
	if path == "" {
		return false, invalid("create directory", path)
	}
	return e.do("CreateDirectory", func() error { return e.fs.MkdirAll(path) }, path)
}

// Create truncates or creates the file at path, creating its parent first.
// A cancelled call returns a nil stream and no error.
func (e *Engine) Create(path string) (io.WriteCloser, error) {
	if path == "" {
		return nil, invalid("create", path)
	}
	if ok, err := e.ensureParent(path); !ok {
		return nil, err
	}
	return get(e, "Create", func() (io.WriteCloser, error) {
		w, err := e.fs.Create(path)
		return w, settled(err)
	}, path)
}

// OpenRead opens the file at path for reading.
func (e *Engine) OpenRead(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, invalid("open", path)
	}
	return get(e, "OpenRead", func() (io.ReadCloser, error) { return e.fs.Open(path) }, path)
}

// OpenWrite opens the file at path for writing from offset zero without
// truncating it, creating the file and its parent when missing.
func (e *Engine) OpenWrite(path string) (io.WriteCloser, error) {
	if path == "" {
		return nil, invalid("open", path)
	}
	if ok, err := e.ensureParent(path); !ok {
		return nil, err
	}
	return get(e, "OpenWrite", func() (io.WriteCloser, error) {
		w, err := e.fs.OpenWrite(path)
		return w, settled(err)
	}, path)
}

// SetAttributes replaces the attribute flags of path.
func (e *Engine) SetAttributes(path string, attrs fs.Attributes) (bool, error) {
	if path == "" {
		return false, invalid("set attributes", path)
	}
	return e.do("SetAttributes", func() error { return e.fs.SetAttributes(path, attrs) }, path)
}

// SetCreationTime sets the creation time of path where the host supports it.
func (e *Engine) SetCreationTime(path string, t time.Time) (bool, error) {
	return e.setTimes("SetCreationTime", path, fs.Times{Creation: t})
}

// SetLastWriteTime sets the modification time of path.
func (e *Engine) SetLastWriteTime(path string, t time.Time) (bool, error) {
	return e.setTimes("SetLastWriteTime", path, fs.Times{LastWrite: t})
}

// SetLastAccessTime sets the access time of path.
func (e *Engine) SetLastAccessTime(path string, t time.Time) (bool, error) {
	return e.setTimes("SetLastAccessTime", path, fs.Times{LastAccess: t})
}

func (e *Engine) setTimes(op, path string, t fs.Times) (bool, error) {
	if path == "" {
		return false, invalid(op, path)
	}
	return e.do(op, func() error { return e.fs.SetTimes(path, t) }, path)
}

// ensureParent creates the parent directory of path when it is missing.
func (e *Engine) ensureParent(path string) (bool, error) {
	dir := filepath.Dir(path)
	if e.Exists(dir) {
		return true, nil
	}
	return e.CreateDirectory(dir)
}

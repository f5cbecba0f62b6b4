package engine

import (
	"path/filepath"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
	"github.com/cube-soft/cube.core-sub000/internal/snapshot"
)

// Exists reports whether path resolves to a file or a directory.
func (e *Engine) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := e.fs.Stat(path)
	return err == nil
}

// Get returns a freshly refreshed snapshot of path.
func (e *Engine) Get(path string) *snapshot.Snapshot {
	return snapshot.New(path, e.refresher)
}

// Files returns the files directly inside dir, sorted by name. A directory
// that cannot be read yields nil.
func (e *Engine) Files(dir string) []string {
	files, _ := e.children(dir)
	return paths(files)
}

// Directories returns the subdirectories directly inside dir, sorted by name.
func (e *Engine) Directories(dir string) []string {
	_, dirs := e.children(dir)
	return paths(dirs)
}

// Combine joins path elements with the host separator.
func (e *Engine) Combine(elem ...string) string {
	return filepath.Join(elem...)
}

func (e *Engine) children(dir string) (files, dirs []fs.FileInfo) {
	if dir == "" {
		return nil, nil
	}
	infos, err := e.fs.ReadDir(dir)
	if err != nil {
		return nil, nil
	}
	for _, info := range infos {
		if info.IsDir {
			dirs = append(dirs, info)
		} else {
			files = append(files, info)
		}
	}
	return files, dirs
}

func paths(infos []fs.FileInfo) []string {
	if len(infos) == 0 {
		return nil
	}
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Path
	}
	return out
}

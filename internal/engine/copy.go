package engine

import (
	"path/filepath"
	"strings"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
	"github.com/cube-soft/cube.core-sub000/internal/snapshot"
)

// Copy copies the file or directory tree at src to dest. Directories are
// merged into an existing dest; existing files are replaced only when
// overwrite is set. A missing src reports false without error.
func (e *Engine) Copy(src, dest string, overwrite bool) (bool, error) {
	if src == "" || dest == "" {
		return false, invalid("copy", "")
	}
	s, d := e.Get(src), e.Get(dest)
	if !s.Exists {
		return false, nil
	}
	if s.FullName == d.FullName {
		return false, invalid("copy onto itself", d.FullName)
	}
	if s.IsDirectory {
		if within(s.FullName, d.FullName) {
			return false, invalid("copy into own subtree", d.FullName)
		}
		return e.copyTree(s, d, overwrite)
	}
	return e.copyFile(s.FullName, d.FullName, overwrite)
}

func (e *Engine) copyFile(src, dest string, overwrite bool) (bool, error) {
	if ok, err := e.ensureParent(dest); !ok {
		return false, err
	}
	return e.do("Copy", func() error { return settled(e.fs.CopyFile(src, dest, overwrite)) }, src, dest)
}

// copyTree walks src exhaustively: files first, then subdirectories. A
// destination created here receives the attributes and timestamps of src
// once its content is in place.
func (e *Engine) copyTree(src, dest *snapshot.Snapshot, overwrite bool) (bool, error) {
	created := !dest.Exists
	if created {
		if ok, err := e.CreateDirectory(dest.FullName); !ok {
			return false, err
		}
	}

	t := newTally()
	files, dirs := e.children(src.FullName)
	for _, f := range files {
		t.add(e.copyFile(f.Path, filepath.Join(dest.FullName, f.Name), overwrite))
	}
	for _, d := range dirs {
		t.add(e.copyTree(e.Get(d.Path), e.Get(filepath.Join(dest.FullName, d.Name)), overwrite))
	}
	if created {
		t.add(e.copyMetadata(src, dest.FullName))
	}
	return t.result()
}

// copyMetadata applies the attributes and timestamps of src to the
// directory at dest.
func (e *Engine) copyMetadata(src *snapshot.Snapshot, dest string) (bool, error) {
	attrs := src.Attributes &^ fs.Directory
	if attrs == 0 {
		attrs = fs.Normal
	}
	t := newTally()
	t.add(e.SetAttributes(dest, attrs))
	t.add(e.do("SetTimes", func() error { return e.fs.SetTimes(dest, src.Times()) }, dest))
	return t.result()
}

// within reports whether child is parent itself or lies below it.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

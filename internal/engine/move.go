package engine

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
	"github.com/cube-soft/cube.core-sub000/internal/metrics"
	"github.com/cube-soft/cube.core-sub000/internal/snapshot"
)

// Move moves the file or directory tree at src to dest. A file is renamed
// in place; with overwrite an existing dest file is replaced through a
// temporary swap that is rolled back on failure. A directory is moved entry
// by entry and removed once empty; a directory holding anything that failed
// to move is kept. A missing src reports false without error.
func (e *Engine) Move(src, dest string, overwrite bool) (bool, error) {
	if src == "" || dest == "" {
		return false, invalid("move", "")
	}
	s, d := e.Get(src), e.Get(dest)
	if !s.Exists {
		return false, nil
	}
	if s.FullName == d.FullName {
		return false, invalid("move onto itself", d.FullName)
	}
	if s.IsDirectory {
		if within(s.FullName, d.FullName) {
			return false, invalid("move into own subtree", d.FullName)
		}
		return e.moveTree(s, d, overwrite)
	}
	return e.moveFile(s.FullName, d, overwrite)
}

func (e *Engine) moveTree(src, dest *snapshot.Snapshot, overwrite bool) (bool, error) {
	created := !dest.Exists
	if created {
		if ok, err := e.CreateDirectory(dest.FullName); !ok {
			return false, err
		}
	}

	t := newTally()
	files, dirs := e.children(src.FullName)
	for _, f := range files {
		t.add(e.moveFile(f.Path, e.Get(filepath.Join(dest.FullName, f.Name)), overwrite))
	}
	for _, d := range dirs {
		t.add(e.moveTree(e.Get(d.Path), e.Get(filepath.Join(dest.FullName, d.Name)), overwrite))
	}
	if created {
		t.add(e.copyMetadata(src, dest.FullName))
	}
	if !t.ok {
		return t.result()
	}
	// Only an empty directory is removed, so content that appeared during
	// the walk survives.
	t.add(e.remove(src.FullName, src.Attributes))
	return t.result()
}

func (e *Engine) moveFile(src string, dest *snapshot.Snapshot, overwrite bool) (bool, error) {
	if ok, err := e.ensureParent(dest.FullName); !ok {
		return false, err
	}
	if !overwrite || !dest.Exists || dest.IsDirectory {
		return e.relocate("Move", src, dest.FullName)
	}
	return e.swap(src, dest.FullName)
}

// swap replaces the existing file dest with src:
//
//	dest -> temp, src -> dest, remove temp
//
// When the second rename fails temp is renamed back to dest. Between the
// two renames dest does not exist.
func (e *Engine) swap(src, dest string) (bool, error) {
	temp := filepath.Join(filepath.Dir(src), e.tempName())

	if ok, err := e.relocate("Move", dest, temp); !ok {
		return false, err
	}

	ok, err := e.relocate("Move", src, dest)
	if ok {
		e.discard(temp)
		return true, nil
	}

	restored, rerr := e.relocate("Rollback", temp, dest)
	metrics.RecordRollback(restored)
	if restored {
		return false, err
	}

	e.log.Error("rollback failed, destination content left at temporary path",
		zap.String("source", src),
		zap.String("destination", dest),
		zap.String("temp", temp),
		zap.Error(rerr),
	)
	if rerr == nil {
		return false, nil
	}
	return false, &RollbackError{
		Source:      src,
		Destination: dest,
		Temp:        temp,
		Err:         multierr.Combine(err, rerr),
	}
}

// discard removes a temporary file outside the retry policy. Failing to
// do so leaves a stray file but does not affect the move.
func (e *Engine) discard(temp string) {
	info, err := e.fs.Stat(temp)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err == nil && info.Attributes.Protected() {
		err = e.fs.SetAttributes(temp, fs.Normal)
	}
	if err == nil {
		err = e.fs.Remove(temp)
	}
	if err != nil {
		e.log.Warn("could not remove temporary file", zap.String("path", temp), zap.Error(err))
	}
}

// relocate renames src to dst under op. When the host cannot rename across
// devices the file is copied to a temporary sibling of dst, renamed into
// place and only then removed from src. Each of those steps is retried on
// its own, so a retry never repeats a step that already succeeded.
func (e *Engine) relocate(op, src, dst string) (bool, error) {
	crossed := false
	ok, err := e.do(op, func() error {
		err := e.fs.Rename(src, dst)
		if errors.Is(err, syscall.EXDEV) {
			crossed = true
			return nil
		}
		return err
	}, src, dst)
	if !ok || !crossed {
		return ok, err
	}

	e.log.Debug("rename crosses devices, copying", zap.String("source", src), zap.String("destination", dst))
	temp := filepath.Join(filepath.Dir(dst), e.tempName())
	if ok, err := e.do("Copy", func() error { return settled(e.fs.CopyFile(src, temp, true)) }, src, temp); !ok {
		e.discard(temp)
		return false, err
	}
	if ok, err := e.do(op, func() error { return e.fs.Rename(temp, dst) }, temp, dst); !ok {
		e.discard(temp)
		return false, err
	}
	return e.remove(src, e.Get(src).Attributes)
}

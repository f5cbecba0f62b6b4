package snapshot

import (
	"path/filepath"
	"strings"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
)

// Refresher (re)populates a snapshot from some source of truth.
// Implementations hold no per-path state and may be shared freely.
type Refresher interface {
	Refresh(s *Snapshot)
}

// HostRefresher refreshes snapshots by querying an fs.FS.
type HostRefresher struct {
	fs fs.FS
}

// NewRefresher returns a refresher backed by the given host.
func NewRefresher(host fs.FS) *HostRefresher {
	return &HostRefresher{fs: host}
}

// Refresh never fails: a path that does not resolve yields a snapshot with
// Exists false whose name fields are still derived from the lexical path.
func (r *HostRefresher) Refresh(s *Snapshot) {
	next := Snapshot{source: s.source, refresher: s.refresher}
	next.setNames(s.source)

	if s.source != "" {
		if info, err := r.fs.Stat(next.FullName); err == nil {
			next.fromInfo(info)
		}
	}

	*s = next
}

func (s *Snapshot) setNames(source string) {
	if source == "" {
		return
	}
	full, err := filepath.Abs(source)
	if err != nil {
		full = filepath.Clean(source)
	}
	s.FullName = full

	dir := filepath.Dir(full)
	if dir == full {
		// volume root: no parent and no name
		return
	}
	s.DirectoryName = dir
	s.Name = filepath.Base(full)
	s.Extension = filepath.Ext(s.Name)
	s.BaseName = strings.TrimSuffix(s.Name, s.Extension)
}

func (s *Snapshot) fromInfo(info fs.FileInfo) {
	s.Exists = true
	s.IsDirectory = info.IsDir
	if !info.IsDir {
		s.Length = info.Size
	}
	s.Attributes = info.Attributes
	s.CreationTime = info.Times.Creation
	s.LastWriteTime = info.Times.LastWrite
	s.LastAccessTime = info.Times.LastAccess
}

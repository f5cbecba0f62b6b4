// Package snapshot models what the engine currently knows about a path.
//
// A Snapshot is a plain value: it is filled by a Refresher when created and
// changes only when Refresh is called again. Two snapshots of the same path
// share nothing, so refreshing one never affects the other.
package snapshot

import (
	"time"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
)

// Snapshot describes one path as of its last refresh.
type Snapshot struct {
	source    string
	refresher Refresher

	Exists      bool
	IsDirectory bool

	Name          string // final path element
	BaseName      string // Name without its extension
	Extension     string // including the leading dot
	FullName      string // absolute, cleaned path
	DirectoryName string // parent of FullName

	Length     int64 // 0 for directories and missing paths
	Attributes fs.Attributes

	CreationTime   time.Time
	LastWriteTime  time.Time
	LastAccessTime time.Time
}

// New returns a snapshot of source populated by r.
func New(source string, r Refresher) *Snapshot {
	s := &Snapshot{source: source, refresher: r}
	s.Refresh()
	return s
}

// Source returns the path exactly as it was given.
func (s *Snapshot) Source() string {
	return s.source
}

// Refresh re-queries the host and replaces every field at once.
func (s *Snapshot) Refresh() {
	if s.refresher == nil {
		return
	}
	s.refresher.Refresh(s)
}

// Times returns the three timestamps in the host's shape.
func (s *Snapshot) Times() fs.Times {
	return fs.Times{
		Creation:   s.CreationTime,
		LastWrite:  s.LastWriteTime,
		LastAccess: s.LastAccessTime,
	}
}

func (s *Snapshot) String() string {
	return s.FullName
}

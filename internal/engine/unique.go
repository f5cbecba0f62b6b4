package engine

import (
	"fmt"
	"path/filepath"

	"github.com/cube-soft/cube.core-sub000/internal/snapshot"
)

// UniqueName returns path itself when nothing exists there, otherwise the
// first free sibling "{base} (n){ext}" for n = 1, 2, ...
func (e *Engine) UniqueName(path string) string {
	return e.Unique(e.Get(path))
}

// Unique is UniqueName for an existing snapshot. The snapshot's own
// existence is taken as of its last refresh.
func (e *Engine) Unique(s *snapshot.Snapshot) string {
	if !s.Exists || s.Name == "" {
		return s.FullName
	}
	for n := 1; ; n++ {
		candidate := filepath.Join(s.DirectoryName, fmt.Sprintf("%s (%d)%s", s.BaseName, n, s.Extension))
		if !e.Exists(candidate) {
			return candidate
		}
	}
}

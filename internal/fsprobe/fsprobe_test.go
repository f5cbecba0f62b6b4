package fsprobe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
)

func TestProbeMissingDirectory(t *testing.T) {
	r := Probe(fs.New(), filepath.Join(t.TempDir(), "missing"))
	assert.False(t, r.FsnotifySupported)
	assert.Contains(t, r.Reason, "stat failed")
}

func TestProbeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	r := Probe(fs.New(), path)
	assert.False(t, r.FsnotifySupported)
	assert.Equal(t, "not a directory", r.Reason)
}

func TestProbeLeavesNoFiles(t *testing.T) {
	dir := t.TempDir()
	r := Probe(fs.New(), dir)
	if !r.FsnotifySupported {
		t.Logf("fsnotify unsupported here: %s", r.Reason)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOSCopyTree(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dest := filepath.Join(root, "dest")
	writeFile(t, filepath.Join(src, "a.txt"), "12345")
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "678")

	e := New()
	ok, err := e.Copy(src, dest, false)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.EqualValues(t, 5, e.Get(filepath.Join(dest, "a.txt")).Length)
	assert.EqualValues(t, 3, e.Get(filepath.Join(dest, "sub", "b.txt")).Length)
}

func TestOSMoveOverwrite(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "in")
	src := filepath.Join(srcDir, "report.txt")
	dest := filepath.Join(root, "out", "report.txt")
	writeFile(t, src, "fresh")
	writeFile(t, dest, "stale content")

	e := New()
	ok, err := e.Move(src, dest, true)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "fresh", readFile(t, dest))
	assert.False(t, e.Exists(src))
	assert.Empty(t, e.Files(srcDir))
}

func TestOSDeleteReadOnly(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "dir", "locked.txt")
	writeFile(t, path, "x")
	require.NoError(t, os.Chmod(path, 0o444))

	e := New()
	ok, err := e.Delete(filepath.Join(root, "dir"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, e.Exists(path))
	assert.False(t, e.Exists(filepath.Join(root, "dir")))
}

func TestOSUniqueName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report.txt"), "")
	writeFile(t, filepath.Join(root, "report (1).txt"), "")

	assert.Equal(t, filepath.Join(root, "report (2).txt"), New().UniqueName(filepath.Join(root, "report.txt")))
}

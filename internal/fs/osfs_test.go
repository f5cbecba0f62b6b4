package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFSStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))

	o := New()
	fi, err := o.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 5, fi.Size)
	assert.False(t, fi.IsDir)
	assert.Equal(t, "a.txt", fi.Name)
	assert.False(t, fi.Times.LastWrite.IsZero())

	fi, err = o.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir)
	assert.Zero(t, fi.Size)
	assert.NotZero(t, fi.Attributes&Directory)
}

func TestOSFSRenameNeverReplaces(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	err := New().Rename(src, dst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrExist), "got %v", err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	require.NoError(t, os.Remove(dst))
	require.NoError(t, New().Rename(src, dst))
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestOSFSCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	o := New()
	require.NoError(t, o.CopyFile(src, dst, false))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	st, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, st.ModTime().Equal(mtime))

	err = o.CopyFile(src, dst, false)
	assert.True(t, errors.Is(err, os.ErrExist), "got %v", err)

	require.NoError(t, os.WriteFile(src, []byte("second"), 0o644))
	require.NoError(t, o.CopyFile(src, dst, true))
	data, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestOSFSReadDirSorted(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"c", "a", "b"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	infos, err := New().ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, infos, 4)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, "sub", infos[3].Name)
	assert.True(t, infos[3].IsDir)
}

func TestOSFSReadOnlyAttribute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	o := New()
	require.NoError(t, o.SetAttributes(path, ReadOnly))
	fi, err := o.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, fi.Attributes&ReadOnly)

	require.NoError(t, o.SetAttributes(path, Normal))
	fi, err = o.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, fi.Attributes&ReadOnly)
}

func TestOSFSSetTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	want := time.Date(2019, 6, 7, 8, 9, 10, 0, time.UTC)
	o := New()
	require.NoError(t, o.SetTimes(path, Times{LastWrite: want}))

	fi, err := o.Stat(path)
	require.NoError(t, err)
	assert.True(t, fi.Times.LastWrite.Equal(want), "got %v", fi.Times.LastWrite)
}

func TestOSFSOpenWriteKeepsTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	w, err := New().OpenWrite(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("HELLO"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "HELLO world", string(data))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(&os.PathError{Op: "copy", Path: "x", Err: ErrSourceChanged}))
	assert.False(t, IsTransient(os.ErrPermission))
}

func TestOSFSSetCreationTimeKeepsOtherTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mtime := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	o := New()
	require.NoError(t, o.SetTimes(path, Times{Creation: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)}))

	fi, err := o.Stat(path)
	require.NoError(t, err)
	assert.True(t, fi.Times.LastWrite.Equal(mtime), "got %v", fi.Times.LastWrite)
}

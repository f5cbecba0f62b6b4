package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeStat(t *testing.T) {
	f := NewFake()
	f.AddDir("/data/docs")
	f.AddFile("/data/docs/a.txt", []byte("hello"))

	fi, err := f.Stat("/data/docs")
	require.NoError(t, err)
	assert.True(t, fi.IsDir)
	assert.Equal(t, "docs", fi.Name)
	assert.NotZero(t, fi.Attributes&Directory)

	fi, err = f.Stat("/data/docs/a.txt")
	require.NoError(t, err)
	assert.False(t, fi.IsDir)
	assert.EqualValues(t, 5, fi.Size)

	_, err = f.Stat("/no/such/path")
	assert.True(t, os.IsNotExist(err))
}

func TestFakeErrorInjection(t *testing.T) {
	f := NewFake()
	f.AddFile("/data/a.txt", []byte("x"))
	injected := fmt.Errorf("disk on fire")
	f.Fail("Remove", "/data/a.txt", injected)

	err := f.Remove("/data/a.txt")
	assert.True(t, errors.Is(err, injected))

	// Other methods on the same path are unaffected.
	_, err = f.Stat("/data/a.txt")
	assert.NoError(t, err)

	f.Heal("Remove", "/data/a.txt")
	assert.NoError(t, f.Remove("/data/a.txt"))
	assert.Equal(t, 2, f.Count("Remove"))
}

func TestFakeMkdirAll(t *testing.T) {
	f := NewFake()
	require.NoError(t, f.MkdirAll("/data/a/b"))
	for _, d := range []string{"/data/a/b", "/data/a", "/data"} {
		e, ok := f.Entries[d]
		require.True(t, ok, d)
		assert.True(t, e.Dir, d)
	}

	f.AddFile("/data/file", nil)
	err := f.MkdirAll("/data/file/sub")
	assert.Error(t, err)
}

func TestFakeReadDir(t *testing.T) {
	f := NewFake()
	f.AddDir("/rigs/beta")
	f.AddDir("/rigs/alpha")
	f.AddFile("/rigs/config.toml", []byte("x"))
	f.AddFile("/rigs/alpha/nested.txt", []byte("y"))

	entries, err := f.ReadDir("/rigs")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	want := []struct {
		name  string
		isDir bool
	}{
		{"alpha", true},
		{"beta", true},
		{"config.toml", false},
	}
	for i, w := range want {
		assert.Equal(t, w.name, entries[i].Name)
		assert.Equal(t, w.isDir, entries[i].IsDir)
	}

	_, err = f.ReadDir("/rigs/config.toml")
	assert.Error(t, err)
}

func TestFakeRemove(t *testing.T) {
	f := NewFake()
	f.AddFile("/d/a.txt", []byte("x")).Attributes = ReadOnly

	err := f.Remove("/d/a.txt")
	assert.True(t, errors.Is(err, os.ErrPermission))

	err = f.Remove("/d")
	assert.Error(t, err, "non-empty directory")

	f.Entries["/d/a.txt"].Attributes = Normal
	require.NoError(t, f.Remove("/d/a.txt"))
	require.NoError(t, f.Remove("/d"))
	_, ok := f.Entries["/d"]
	assert.False(t, ok)
}

func TestFakeRename(t *testing.T) {
	f := NewFake()
	f.AddFile("/city/beads.json.tmp", []byte(`{"seq":1}`))

	require.NoError(t, f.Rename("/city/beads.json.tmp", "/city/beads.json"))
	_, ok := f.Entries["/city/beads.json.tmp"]
	assert.False(t, ok)
	data, ok := f.Content("/city/beads.json")
	require.True(t, ok)
	assert.Equal(t, `{"seq":1}`, string(data))
}

func TestFakeRenameNeverReplaces(t *testing.T) {
	f := NewFake()
	f.AddFile("/a/src", []byte("new"))
	f.AddFile("/a/dst", []byte("old"))

	err := f.Rename("/a/src", "/a/dst")
	assert.True(t, errors.Is(err, os.ErrExist))

	data, _ := f.Content("/a/dst")
	assert.Equal(t, "old", string(data))
}

func TestFakeRenameDirectory(t *testing.T) {
	f := NewFake()
	f.AddFile("/a/sub/x.txt", []byte("x"))

	require.NoError(t, f.Rename("/a/sub", "/a/moved"))
	_, ok := f.Content("/a/moved/x.txt")
	assert.True(t, ok)
	_, ok = f.Entries["/a/sub"]
	assert.False(t, ok)
}

func TestFakeCopyFile(t *testing.T) {
	f := NewFake()
	f.AddFile("/a/src", []byte("data"))
	f.AddFile("/a/dst", []byte("old"))

	err := f.CopyFile("/a/src", "/a/dst", false)
	assert.True(t, errors.Is(err, os.ErrExist))

	require.NoError(t, f.CopyFile("/a/src", "/a/dst", true))
	data, _ := f.Content("/a/dst")
	assert.Equal(t, "data", string(data))

	err = f.CopyFile("/a/src", "/missing/dst", false)
	assert.True(t, os.IsNotExist(err))
}

func TestFakeStreams(t *testing.T) {
	f := NewFake()
	f.AddDir("/a")

	w, err := f.Create("/a/file")
	require.NoError(t, err)
	_, err = io.WriteString(w, "hello world")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w, err = f.OpenWrite("/a/file")
	require.NoError(t, err)
	_, err = io.WriteString(w, "HELLO")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := f.Open("/a/file")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "HELLO world", string(data))

	_, err = f.Create("/missing/file")
	assert.True(t, os.IsNotExist(err))
}

func TestAttributesString(t *testing.T) {
	assert.Equal(t, "None", Attributes(0).String())
	assert.Equal(t, "ReadOnly|Hidden", (ReadOnly | Hidden).String())
	assert.True(t, (System | Archive).Protected())
	assert.False(t, (Normal | Directory).Protected())
}

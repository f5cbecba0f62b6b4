package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube-soft/cube.core-sub000/internal/fs"
)

func TestNewFile(t *testing.T) {
	host := fs.NewFake()
	host.AddFile("/data/report.final.txt", []byte("12345"))

	s := New("/data/report.final.txt", NewRefresher(host))

	assert.Equal(t, "/data/report.final.txt", s.Source())
	assert.True(t, s.Exists)
	assert.False(t, s.IsDirectory)
	assert.Equal(t, "report.final.txt", s.Name)
	assert.Equal(t, "report.final", s.BaseName)
	assert.Equal(t, ".txt", s.Extension)
	assert.Equal(t, "/data/report.final.txt", s.FullName)
	assert.Equal(t, "/data", s.DirectoryName)
	assert.EqualValues(t, 5, s.Length)
	assert.Equal(t, fs.Normal, s.Attributes)
	assert.False(t, s.LastWriteTime.IsZero())
}

func TestNewDirectory(t *testing.T) {
	host := fs.NewFake()
	host.AddDir("/data/docs")

	s := New("/data/docs", NewRefresher(host))
	assert.True(t, s.Exists)
	assert.True(t, s.IsDirectory)
	assert.Zero(t, s.Length)
	assert.Equal(t, "docs", s.Name)
}

func TestMissingPathKeepsNames(t *testing.T) {
	host := fs.NewFake()

	s := New("/nowhere/archive.tar.gz", NewRefresher(host))
	assert.False(t, s.Exists)
	assert.False(t, s.IsDirectory)
	assert.Zero(t, s.Length)
	assert.Zero(t, s.Attributes)
	assert.True(t, s.CreationTime.IsZero())
	assert.True(t, s.LastWriteTime.IsZero())
	assert.True(t, s.LastAccessTime.IsZero())

	assert.Equal(t, "archive.tar.gz", s.Name)
	assert.Equal(t, "archive.tar", s.BaseName)
	assert.Equal(t, ".gz", s.Extension)
	assert.Equal(t, "/nowhere", s.DirectoryName)
}

func TestRelativeSourceIsResolved(t *testing.T) {
	s := New("some/relative.txt", NewRefresher(fs.NewFake()))
	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, "some/relative.txt", s.Source())
	assert.Equal(t, filepath.Join(wd, "some", "relative.txt"), s.FullName)
}

func TestRefreshReplacesAllFields(t *testing.T) {
	host := fs.NewFake()
	r := NewRefresher(host)

	s := New("/a/file.txt", r)
	require.False(t, s.Exists)

	host.AddFile("/a/file.txt", []byte("abc"))
	s.Refresh()
	assert.True(t, s.Exists)
	assert.EqualValues(t, 3, s.Length)

	require.NoError(t, host.Remove("/a/file.txt"))
	s.Refresh()
	assert.False(t, s.Exists)
	assert.Zero(t, s.Length)
	assert.Equal(t, "/a/file.txt", s.Source())
}

func TestSnapshotsAreIndependent(t *testing.T) {
	host := fs.NewFake()
	host.AddFile("/a/file.txt", []byte("abc"))
	r := NewRefresher(host)

	first := New("/a/file.txt", r)
	second := New("/a/file.txt", r)

	host.Entries["/a/file.txt"].Data = []byte("abcdef")
	first.Refresh()

	assert.EqualValues(t, 6, first.Length)
	assert.EqualValues(t, 3, second.Length)
}

func TestTimesRoundTrip(t *testing.T) {
	host := fs.NewFake()
	e := host.AddFile("/a/file.txt", nil)
	ts := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	e.Times = fs.Times{Creation: ts, LastWrite: ts.Add(time.Hour), LastAccess: ts.Add(2 * time.Hour)}

	s := New("/a/file.txt", NewRefresher(host))
	assert.Equal(t, e.Times, s.Times())
}

func TestEmptySource(t *testing.T) {
	host := fs.NewFake()
	s := New("", NewRefresher(host))
	assert.False(t, s.Exists)
	assert.Empty(t, s.FullName)
	assert.Zero(t, host.Count("Stat"))
}

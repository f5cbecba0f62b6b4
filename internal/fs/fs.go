// Package fs defines the host filesystem abstraction used by cubefs.
// It provides the FS interface, the FileInfo record it reports and the
// attribute flags shared across the system.
package fs

import (
	"io"
	"os"
	"strings"
	"time"
)

// Attributes is a set of host attribute flags. The bit values mirror the
// Windows FILE_ATTRIBUTE_* constants so they pass through unchanged there;
// other hosts map what they can.
type Attributes uint32

const (
	ReadOnly  Attributes = 0x1
	Hidden    Attributes = 0x2
	System    Attributes = 0x4
	Directory Attributes = 0x10
	Archive   Attributes = 0x20
	Normal    Attributes = 0x80
)

var attributeNames = []struct {
	flag Attributes
	name string
}{
	{ReadOnly, "ReadOnly"},
	{Hidden, "Hidden"},
	{System, "System"},
	{Directory, "Directory"},
	{Archive, "Archive"},
	{Normal, "Normal"},
}

func (a Attributes) String() string {
	if a == 0 {
		return "None"
	}
	var parts []string
	for _, n := range attributeNames {
		if a&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, "|")
}

// Protected reports whether a carries a flag that can block removal.
func (a Attributes) Protected() bool {
	return a&(ReadOnly|Hidden|System) != 0
}

// Times holds the three timestamps of a path. A zero field means
// "leave unchanged" when passed to SetTimes.
type Times struct {
	Creation   time.Time
	LastWrite  time.Time
	LastAccess time.Time
}

// FileInfo is what the host reports about one path.
type FileInfo struct {
	Path       string
	Name       string
	Size       int64
	IsDir      bool
	Mode       os.FileMode
	Attributes Attributes
	Times      Times
	Inode      uint64
}

// FS is the set of host primitives the engine is built from. Every method
// operates on exactly one path (or one pair for Rename/CopyFile) and never
// recurses.
type FS interface {
	Stat(path string) (FileInfo, error)

	// ReadDir returns the direct children of path sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	MkdirAll(path string) error

	// Remove deletes a file or an empty directory.
	Remove(path string) error

	// Rename never replaces an existing newPath; it fails with an error
	// matching os.ErrExist instead.
	Rename(oldPath, newPath string) error

	// CopyFile copies content, permissions and modification time. With
	// overwrite false an existing dst fails with os.ErrExist.
	CopyFile(src, dst string, overwrite bool) error

	// Create creates or truncates path.
	Create(path string) (io.WriteCloser, error)

	Open(path string) (io.ReadCloser, error)

	// OpenWrite opens path for writing from offset zero without truncating,
	// creating it when missing.
	OpenWrite(path string) (io.WriteCloser, error)

	SetAttributes(path string, attrs Attributes) error
	SetTimes(path string, t Times) error
}

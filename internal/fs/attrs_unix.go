//go:build !windows

package fs

import (
	"os"
	"path/filepath"
	"strings"
)

// attributesOf maps POSIX metadata onto attribute flags: dot-files are
// hidden and files without the owner write bit are read-only. Directories
// never report ReadOnly because a non-writable directory would block the
// creation of its children during a tree copy.
func attributesOf(path string, info os.FileInfo) Attributes {
	var a Attributes
	if info.IsDir() {
		a |= Directory
	} else if info.Mode().Perm()&0o200 == 0 {
		a |= ReadOnly
	}
	if name := filepath.Base(path); strings.HasPrefix(name, ".") && name != "." && name != ".." {
		a |= Hidden
	}
	if a == 0 {
		a = Normal
	}
	return a
}

// setAttributes applies the only flag POSIX can express, ReadOnly, by
// toggling the write bits. Other flags are ignored.
func setAttributes(path string, attrs Attributes) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return nil
	}
	mode := st.Mode().Perm()
	if attrs&ReadOnly != 0 {
		mode &^= 0o222
	} else {
		mode |= 0o200
	}
	if mode == st.Mode().Perm() {
		return nil
	}
	return os.Chmod(path, mode)
}

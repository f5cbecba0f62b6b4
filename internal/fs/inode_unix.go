//go:build unix

package fs

import (
	"os"
	"syscall"
)

// inodeOf reads the inode number so CopyFile can notice a source that was
// replaced while it was being copied.
func inodeOf(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Ino)
}

//go:build windows

package fs

import "os"

// Windows does not expose POSIX inodes through os.FileInfo; change
// detection falls back to size and modification time.
func inodeOf(info os.FileInfo) uint64 {
	_ = info
	return 0
}

package fs

import "os"

// renameChecked refuses an existing target before delegating to os.Rename,
// which would silently replace it. The check and the rename are not atomic.
func renameChecked(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: os.ErrExist}
	}
	return os.Rename(oldPath, newPath)
}

package fs

import (
	"io"
	"os"
)

// copyFile copies src to dst and aborts if the source changes mid-copy, so
// a copy is never a blend of two versions of the source.
func copyFile(src, dst string, overwrite bool) error {
	orig, err := os.Stat(src)
	if err != nil {
		return err
	}
	before := fromFileInfo(src, orig)

	if err := copyOnce(src, dst, orig.Mode().Perm(), overwrite); err != nil {
		return err
	}

	now, err := os.Stat(src)
	if err != nil {
		return err
	}
	if sourceChanged(before, fromFileInfo(src, now)) {
		return &os.PathError{Op: "copy", Path: src, Err: ErrSourceChanged}
	}

	if err := os.Chmod(dst, orig.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, before.Times.LastAccess, before.Times.LastWrite)
}

func sourceChanged(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if now.Times.LastWrite.After(orig.Times.LastWrite) {
		return true
	}
	if now.Size != orig.Size {
		return true
	}
	return false
}

func copyOnce(src, dst string, perm os.FileMode, overwrite bool) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flag |= os.O_EXCL
	}
	// The user keeps write permission until the copy is complete; the
	// source permissions are applied afterwards.
	out, err := os.OpenFile(dst, flag, perm|0o200)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Sync(); err != nil {
		return err
	}
	return out.Close()
}

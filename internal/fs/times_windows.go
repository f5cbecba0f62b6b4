//go:build windows

package fs

import (
	"os"
	"syscall"
	"time"
)

func timesOf(path string, info os.FileInfo) Times {
	_ = path
	d, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return Times{Creation: info.ModTime(), LastWrite: info.ModTime(), LastAccess: info.ModTime()}
	}
	return Times{
		Creation:   time.Unix(0, d.CreationTime.Nanoseconds()),
		LastWrite:  time.Unix(0, d.LastWriteTime.Nanoseconds()),
		LastAccess: time.Unix(0, d.LastAccessTime.Nanoseconds()),
	}
}

func setCreationTime(path string, t time.Time) error {
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	h, err := syscall.CreateFile(p,
		syscall.FILE_WRITE_ATTRIBUTES,
		syscall.FILE_SHARE_READ|syscall.FILE_SHARE_WRITE|syscall.FILE_SHARE_DELETE,
		nil, syscall.OPEN_EXISTING, syscall.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return &os.PathError{Op: "chtimes", Path: path, Err: err}
	}
	defer syscall.CloseHandle(h)

	ft := syscall.NsecToFiletime(t.UnixNano())
	if err := syscall.SetFileTime(h, &ft, nil, nil); err != nil {
		return &os.PathError{Op: "chtimes", Path: path, Err: err}
	}
	return nil
}

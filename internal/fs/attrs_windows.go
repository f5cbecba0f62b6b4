//go:build windows

package fs

import (
	"os"
	"syscall"
)

func attributesOf(path string, info os.FileInfo) Attributes {
	_ = path
	if d, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return Attributes(d.FileAttributes)
	}
	if info.IsDir() {
		return Directory
	}
	return Normal
}

func setAttributes(path string, attrs Attributes) error {
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	if err := syscall.SetFileAttributes(p, uint32(attrs)); err != nil {
		return &os.PathError{Op: "setattr", Path: path, Err: err}
	}
	return nil
}

package fs

import (
	"io"
	"os"
	"path/filepath"
	"sort"
)

// OSFS is the concrete FS backed by the local operating system.
// Platform-specific details (inodes, attributes, birth times, no-replace
// rename) live in build-tagged files.
type OSFS struct{}

func New() *OSFS {
	return &OSFS{}
}

func (o *OSFS) Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return fromFileInfo(path, st), nil
}

func (o *OSFS) ReadDir(path string) ([]FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		full := filepath.Join(path, e.Name())
		// Follow symlinks the same way Stat does; entries that vanished
		// between ReadDir and Stat are skipped.
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		infos = append(infos, fromFileInfo(full, st))
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (o *OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (o *OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (o *OSFS) Rename(oldPath, newPath string) error {
	return renameNoReplace(oldPath, newPath)
}

func (o *OSFS) CopyFile(src, dst string, overwrite bool) error {
	return copyFile(src, dst, overwrite)
}

func (o *OSFS) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (o *OSFS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (o *OSFS) OpenWrite(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
}

func (o *OSFS) SetAttributes(path string, attrs Attributes) error {
	return setAttributes(path, attrs)
}

func (o *OSFS) SetTimes(path string, t Times) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	cur := timesOf(path, st)

	atime, mtime := t.LastAccess, t.LastWrite
	if atime.IsZero() {
		atime = cur.LastAccess
	}
	if mtime.IsZero() {
		mtime = cur.LastWrite
	}
	if err := os.Chtimes(path, atime, mtime); err != nil {
		return err
	}
	if !t.Creation.IsZero() {
		return setCreationTime(path, t.Creation)
	}
	return nil
}

func fromFileInfo(path string, st os.FileInfo) FileInfo {
	info := FileInfo{
		Path:       path,
		Name:       filepath.Base(path),
		IsDir:      st.IsDir(),
		Mode:       st.Mode(),
		Attributes: attributesOf(path, st),
		Times:      timesOf(path, st),
		Inode:      inodeOf(st),
	}
	if !info.IsDir {
		info.Size = st.Size()
	}
	return info
}

var _ FS = (*OSFS)(nil)

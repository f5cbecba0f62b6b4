package fs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

// Fake is an in-memory [FS] for testing. It records all calls (spy) and
// simulates filesystem state (fake). Pre-populate it with AddDir/AddFile and
// inject failures through Errors before exercising the code under test.
//
// Removing an entry that carries ReadOnly fails with a permission error, the
// way Windows hosts behave, so attribute handling can be tested anywhere.
type Fake struct {
	Entries map[string]*FakeEntry // cleaned path → entry
	Errors  map[Call]error        // injected failures (checked first)
	Calls   []Call                // spy log
	Now     func() time.Time
}

// FakeEntry is a file or directory held by [Fake].
type FakeEntry struct {
	Data       []byte
	Dir        bool
	Attributes Attributes
	Times      Times
}

// Call records a single method invocation on [Fake]. It doubles as the key
// of Fake.Errors.
type Call struct {
	Method string // "Stat", "ReadDir", "MkdirAll", "Remove", "Rename", ...
	Path   string // first path argument
}

// NewFake returns a ready-to-use [Fake] holding only the root directory.
func NewFake() *Fake {
	f := &Fake{
		Entries: make(map[string]*FakeEntry),
		Errors:  make(map[Call]error),
		Now:     time.Now,
	}
	f.Entries[string(filepath.Separator)] = &FakeEntry{Dir: true, Attributes: Directory}
	return f
}

// AddDir adds a directory and all of its parents.
func (f *Fake) AddDir(path string) *FakeEntry {
	path = filepath.Clean(path)
	if e, ok := f.Entries[path]; ok && e.Dir {
		return e
	}
	if parent := filepath.Dir(path); parent != path {
		f.AddDir(parent)
	}
	e := &FakeEntry{Dir: true, Attributes: Directory, Times: f.stamp()}
	f.Entries[path] = e
	return e
}

// AddFile adds a file (and its parent directories) holding data.
func (f *Fake) AddFile(path string, data []byte) *FakeEntry {
	path = filepath.Clean(path)
	f.AddDir(filepath.Dir(path))
	e := &FakeEntry{Data: append([]byte(nil), data...), Attributes: Normal, Times: f.stamp()}
	f.Entries[path] = e
	return e
}

// Fail injects err for every call of method on path.
func (f *Fake) Fail(method, path string, err error) {
	f.Errors[Call{Method: method, Path: filepath.Clean(path)}] = err
}

// Heal removes an injected failure.
func (f *Fake) Heal(method, path string) {
	delete(f.Errors, Call{Method: method, Path: filepath.Clean(path)})
}

// Content returns the data of the file at path.
func (f *Fake) Content(path string) ([]byte, bool) {
	e, ok := f.Entries[filepath.Clean(path)]
	if !ok || e.Dir {
		return nil, false
	}
	return append([]byte(nil), e.Data...), true
}

// Count returns the number of recorded calls of method.
func (f *Fake) Count(method string) int {
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *Fake) record(method, path string) (string, error) {
	path = filepath.Clean(path)
	f.Calls = append(f.Calls, Call{Method: method, Path: path})
	if err, ok := f.Errors[Call{Method: method, Path: path}]; ok {
		return path, err
	}
	return path, nil
}

func (f *Fake) stamp() Times {
	now := f.Now()
	return Times{Creation: now, LastWrite: now, LastAccess: now}
}

func (f *Fake) info(path string, e *FakeEntry) FileInfo {
	info := FileInfo{
		Path:       path,
		Name:       filepath.Base(path),
		IsDir:      e.Dir,
		Attributes: e.Attributes,
		Times:      e.Times,
		Mode:       0o644,
	}
	if e.Dir {
		info.Mode = os.ModeDir | 0o755
	} else {
		info.Size = int64(len(e.Data))
	}
	return info
}

func (f *Fake) children(path string) []string {
	var out []string
	for p := range f.Entries {
		if p != path && filepath.Dir(p) == path {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (f *Fake) parentDir(op, path string) error {
	parent, ok := f.Entries[filepath.Dir(path)]
	if !ok {
		return &os.PathError{Op: op, Path: path, Err: os.ErrNotExist}
	}
	if !parent.Dir {
		return &os.PathError{Op: op, Path: path, Err: syscall.ENOTDIR}
	}
	return nil
}

// Stat records the call and returns info for the entry at name.
func (f *Fake) Stat(name string) (FileInfo, error) {
	name, err := f.record("Stat", name)
	if err != nil {
		return FileInfo{}, err
	}
	e, ok := f.Entries[name]
	if !ok {
		return FileInfo{}, &os.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
	}
	return f.info(name, e), nil
}

// ReadDir records the call and returns the direct children of name.
func (f *Fake) ReadDir(name string) ([]FileInfo, error) {
	name, err := f.record("ReadDir", name)
	if err != nil {
		return nil, err
	}
	e, ok := f.Entries[name]
	if !ok {
		return nil, &os.PathError{Op: "readdir", Path: name, Err: os.ErrNotExist}
	}
	if !e.Dir {
		return nil, &os.PathError{Op: "readdir", Path: name, Err: syscall.ENOTDIR}
	}
	var infos []FileInfo
	for _, p := range f.children(name) {
		infos = append(infos, f.info(p, f.Entries[p]))
	}
	return infos, nil
}

// MkdirAll records the call and adds the directory and its parents.
func (f *Fake) MkdirAll(path string) error {
	path, err := f.record("MkdirAll", path)
	if err != nil {
		return err
	}
	for p := path; ; p = filepath.Dir(p) {
		if e, ok := f.Entries[p]; ok && !e.Dir {
			return &os.PathError{Op: "mkdir", Path: p, Err: syscall.ENOTDIR}
		}
		if filepath.Dir(p) == p {
			break
		}
	}
	f.AddDir(path)
	return nil
}

// Remove records the call and deletes a file or an empty directory.
func (f *Fake) Remove(path string) error {
	path, err := f.record("Remove", path)
	if err != nil {
		return err
	}
	e, ok := f.Entries[path]
	if !ok {
		return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
	}
	if e.Attributes&ReadOnly != 0 {
		return &os.PathError{Op: "remove", Path: path, Err: os.ErrPermission}
	}
	if e.Dir && len(f.children(path)) > 0 {
		return &os.PathError{Op: "remove", Path: path, Err: syscall.ENOTEMPTY}
	}
	delete(f.Entries, path)
	return nil
}

// Rename records the call (keyed by oldPath) and moves the entry together
// with any descendants. An existing newPath is never replaced.
func (f *Fake) Rename(oldPath, newPath string) error {
	oldPath, err := f.record("Rename", oldPath)
	if err != nil {
		return err
	}
	newPath = filepath.Clean(newPath)
	if _, ok := f.Entries[oldPath]; !ok {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: os.ErrNotExist}
	}
	if _, ok := f.Entries[newPath]; ok {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: os.ErrExist}
	}
	if err := f.parentDir("rename", newPath); err != nil {
		return err
	}

	prefix := oldPath + string(filepath.Separator)
	moved := make(map[string]*FakeEntry)
	for p, e := range f.Entries {
		if p == oldPath {
			moved[newPath] = e
		} else if strings.HasPrefix(p, prefix) {
			moved[newPath+p[len(oldPath):]] = e
		}
	}
	for p := range f.Entries {
		if p == oldPath || strings.HasPrefix(p, prefix) {
			delete(f.Entries, p)
		}
	}
	for p, e := range moved {
		f.Entries[p] = e
	}
	return nil
}

// CopyFile records the call (keyed by src) and duplicates a file entry.
func (f *Fake) CopyFile(src, dst string, overwrite bool) error {
	src, err := f.record("CopyFile", src)
	if err != nil {
		return err
	}
	dst = filepath.Clean(dst)
	s, ok := f.Entries[src]
	if !ok {
		return &os.PathError{Op: "open", Path: src, Err: os.ErrNotExist}
	}
	if s.Dir {
		return &os.PathError{Op: "read", Path: src, Err: syscall.EISDIR}
	}
	if err := f.parentDir("open", dst); err != nil {
		return err
	}
	if d, ok := f.Entries[dst]; ok {
		if !overwrite {
			return &os.PathError{Op: "open", Path: dst, Err: os.ErrExist}
		}
		if d.Dir {
			return &os.PathError{Op: "open", Path: dst, Err: syscall.EISDIR}
		}
		if d.Attributes&ReadOnly != 0 {
			return &os.PathError{Op: "open", Path: dst, Err: os.ErrPermission}
		}
	}
	now := f.Now()
	f.Entries[dst] = &FakeEntry{
		Data:       append([]byte(nil), s.Data...),
		Attributes: s.Attributes,
		Times:      Times{Creation: now, LastWrite: s.Times.LastWrite, LastAccess: now},
	}
	return nil
}

// Create records the call and truncates (or creates) the file at path.
func (f *Fake) Create(path string) (io.WriteCloser, error) {
	path, err := f.record("Create", path)
	if err != nil {
		return nil, err
	}
	if err := f.writable("open", path); err != nil {
		return nil, err
	}
	f.Entries[path] = &FakeEntry{Attributes: Normal, Times: f.stamp()}
	return &fakeWriter{f: f, path: path}, nil
}

// Open records the call and returns a reader over a copy of the file data.
func (f *Fake) Open(path string) (io.ReadCloser, error) {
	path, err := f.record("Open", path)
	if err != nil {
		return nil, err
	}
	e, ok := f.Entries[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	if e.Dir {
		return nil, &os.PathError{Op: "read", Path: path, Err: syscall.EISDIR}
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), e.Data...))), nil
}

// OpenWrite records the call and returns a writer that overwrites the file
// from offset zero when closed, keeping any longer tail.
func (f *Fake) OpenWrite(path string) (io.WriteCloser, error) {
	path, err := f.record("OpenWrite", path)
	if err != nil {
		return nil, err
	}
	if err := f.writable("open", path); err != nil {
		return nil, err
	}
	if _, ok := f.Entries[path]; !ok {
		f.Entries[path] = &FakeEntry{Attributes: Normal, Times: f.stamp()}
	}
	return &fakeWriter{f: f, path: path, keepTail: true}, nil
}

// SetAttributes records the call and replaces the entry's attributes.
func (f *Fake) SetAttributes(path string, attrs Attributes) error {
	path, err := f.record("SetAttributes", path)
	if err != nil {
		return err
	}
	e, ok := f.Entries[path]
	if !ok {
		return &os.PathError{Op: "setattr", Path: path, Err: os.ErrNotExist}
	}
	if e.Dir {
		attrs |= Directory
	}
	e.Attributes = attrs
	return nil
}

// SetTimes records the call and updates the non-zero timestamps.
func (f *Fake) SetTimes(path string, t Times) error {
	path, err := f.record("SetTimes", path)
	if err != nil {
		return err
	}
	e, ok := f.Entries[path]
	if !ok {
		return &os.PathError{Op: "chtimes", Path: path, Err: os.ErrNotExist}
	}
	if !t.Creation.IsZero() {
		e.Times.Creation = t.Creation
	}
	if !t.LastWrite.IsZero() {
		e.Times.LastWrite = t.LastWrite
	}
	if !t.LastAccess.IsZero() {
		e.Times.LastAccess = t.LastAccess
	}
	return nil
}

func (f *Fake) writable(op, path string) error {
	if err := f.parentDir(op, path); err != nil {
		return err
	}
	if e, ok := f.Entries[path]; ok {
		if e.Dir {
			return &os.PathError{Op: op, Path: path, Err: syscall.EISDIR}
		}
		if e.Attributes&ReadOnly != 0 {
			return &os.PathError{Op: op, Path: path, Err: os.ErrPermission}
		}
	}
	return nil
}

// --- fake writer ---

type fakeWriter struct {
	f        *Fake
	path     string
	buf      bytes.Buffer
	keepTail bool
	closed   bool
}

func (w *fakeWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *fakeWriter) Close() error {
	if w.closed {
		return os.ErrClosed
	}
	w.closed = true

	e, ok := w.f.Entries[w.path]
	if !ok {
		return &os.PathError{Op: "close", Path: w.path, Err: os.ErrNotExist}
	}
	data := w.buf.Bytes()
	if w.keepTail && len(e.Data) > len(data) {
		data = append(append([]byte(nil), data...), e.Data[len(data):]...)
	}
	e.Data = append([]byte(nil), data...)
	e.Times.LastWrite = w.f.Now()
	return nil
}

var _ FS = (*Fake)(nil)

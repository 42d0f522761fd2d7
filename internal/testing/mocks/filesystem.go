// Package mocks provides fault-injecting test doubles for the fio packages.
package mocks

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
)

// MockFileInfo overrides the mode a path reports from Stat.
type MockFileInfo struct {
	NameVal string
	SizeVal int64
	ModeVal os.FileMode
}

func (f *MockFileInfo) Name() string       { return f.NameVal }
func (f *MockFileInfo) Size() int64        { return f.SizeVal }
func (f *MockFileInfo) Mode() os.FileMode  { return f.ModeVal }
func (f *MockFileInfo) ModTime() time.Time { return time.Time{} }
func (f *MockFileInfo) IsDir() bool        { return f.ModeVal.IsDir() }
func (f *MockFileInfo) Sys() any           { return nil }

// MockFileSystem is an in-memory billy filesystem that injects failures.
//
// OpErrors maps an operation name to the error it returns. Filesystem
// operations are "OpenFile", "Stat", "ReadDir", "MkdirAll", "Rename" and
// "Remove"; file operations are "Read", "Write", "Seek", "Truncate", "Sync"
// and "Close". PathErrors does the same for one path at a time.
type MockFileSystem struct {
	billy.Filesystem

	Mu         sync.Mutex
	OpErrors   map[string]error            // operation -> error to return
	PathErrors map[string]map[string]error // path -> operation -> error
	Modes      map[string]os.FileMode      // path -> mode reported by Stat

	// WriteLimit caps how many bytes a single Write accepts; 0 means no cap.
	WriteLimit int

	Opened int
	Closed int
}

// NewMockFileSystem returns an empty filesystem with no injected failures.
func NewMockFileSystem() *MockFileSystem {
	backend := memfs.New()
	_ = backend.MkdirAll(string(filepath.Separator), 0o755)
	return &MockFileSystem{
		Filesystem: backend,
		OpErrors:   make(map[string]error),
		PathErrors: make(map[string]map[string]error),
		Modes:      make(map[string]os.FileMode),
	}
}

// SetOperationError makes every call of operation fail with err.
func (f *MockFileSystem) SetOperationError(operation string, err error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.OpErrors[operation] = err
}

// ClearOperationError removes an injected failure.
func (f *MockFileSystem) ClearOperationError(operation string) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	delete(f.OpErrors, operation)
}

// SetPathError makes operation fail with err for path only.
func (f *MockFileSystem) SetPathError(path, operation string, err error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	path = filepath.Clean(path)
	if f.PathErrors[path] == nil {
		f.PathErrors[path] = make(map[string]error)
	}
	f.PathErrors[path][operation] = err
}

// SetMode makes Stat report mode for path, e.g. os.ModeNamedPipe.
func (f *MockFileSystem) SetMode(path string, mode os.FileMode) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	f.Modes[filepath.Clean(path)] = mode
}

// OpenHandles returns how many opened files have not been closed.
func (f *MockFileSystem) OpenHandles() int {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	return f.Opened - f.Closed
}

func (f *MockFileSystem) fault(operation, path string) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if byOp, ok := f.PathErrors[filepath.Clean(path)]; ok {
		if err, ok := byOp[operation]; ok {
			return err
		}
	}
	return f.OpErrors[operation]
}

func (f *MockFileSystem) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if err := f.fault("OpenFile", name); err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	file, err := f.Filesystem.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	f.Mu.Lock()
	f.Opened++
	f.Mu.Unlock()
	return &MockFile{File: file, fs: f, path: filepath.Clean(name)}, nil
}

func (f *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if err := f.fault("Stat", name); err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	info, err := f.Filesystem.Stat(name)
	if err != nil {
		return nil, err
	}
	f.Mu.Lock()
	mode, ok := f.Modes[filepath.Clean(name)]
	f.Mu.Unlock()
	if ok {
		return &MockFileInfo{NameVal: info.Name(), SizeVal: info.Size(), ModeVal: mode}, nil
	}
	return info, nil
}

func (f *MockFileSystem) ReadDir(name string) ([]os.FileInfo, error) {
	if err := f.fault("ReadDir", name); err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return f.Filesystem.ReadDir(name)
}

func (f *MockFileSystem) MkdirAll(name string, perm os.FileMode) error {
	if err := f.fault("MkdirAll", name); err != nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: err}
	}
	return f.Filesystem.MkdirAll(name, perm)
}

func (f *MockFileSystem) Rename(from, to string) error {
	if err := f.fault("Rename", from); err != nil {
		return &os.LinkError{Op: "rename", Old: from, New: to, Err: err}
	}
	return f.Filesystem.Rename(from, to)
}

func (f *MockFileSystem) Remove(name string) error {
	if err := f.fault("Remove", name); err != nil {
		return &fs.PathError{Op: "remove", Path: name, Err: err}
	}
	return f.Filesystem.Remove(name)
}

// MockFile wraps a billy file and injects the failures configured on its
// filesystem.
type MockFile struct {
	billy.File
	fs     *MockFileSystem
	path   string
	closed bool
}

func (h *MockFile) Read(p []byte) (int, error) {
	if err := h.fs.fault("Read", h.path); err != nil {
		return 0, &fs.PathError{Op: "read", Path: h.path, Err: err}
	}
	return h.File.Read(p)
}

func (h *MockFile) Write(p []byte) (int, error) {
	if err := h.fs.fault("Write", h.path); err != nil {
		return 0, &fs.PathError{Op: "write", Path: h.path, Err: err}
	}
	if limit := h.fs.WriteLimit; limit > 0 && len(p) > limit {
		return h.File.Write(p[:limit])
	}
	return h.File.Write(p)
}

func (h *MockFile) Seek(offset int64, whence int) (int64, error) {
	if err := h.fs.fault("Seek", h.path); err != nil {
		return 0, &fs.PathError{Op: "seek", Path: h.path, Err: err}
	}
	return h.File.Seek(offset, whence)
}

func (h *MockFile) Truncate(size int64) error {
	if err := h.fs.fault("Truncate", h.path); err != nil {
		return &fs.PathError{Op: "truncate", Path: h.path, Err: err}
	}
	return h.File.Truncate(size)
}

// Sync is a no-op unless a failure is injected.
func (h *MockFile) Sync() error {
	if err := h.fs.fault("Sync", h.path); err != nil {
		return &fs.PathError{Op: "sync", Path: h.path, Err: err}
	}
	return nil
}

// Close releases the file and counts the release even when a failure is
// injected, the way an OS close frees the descriptor on error.
func (h *MockFile) Close() error {
	if !h.closed {
		h.closed = true
		h.fs.Mu.Lock()
		h.fs.Closed++
		h.fs.Mu.Unlock()
	}
	if err := h.fs.fault("Close", h.path); err != nil {
		_ = h.File.Close()
		return &fs.PathError{Op: "close", Path: h.path, Err: err}
	}
	return h.File.Close()
}

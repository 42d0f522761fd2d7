// Package fsutil provides the filesystem namespace shared by file handles and
// directory operations. It sits on top of a billy filesystem and owns the
// working directory that relative paths resolve against.
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// nativeFS is a billy.Filesystem that passes paths straight to the OS.
type nativeFS struct {
	osfs.ChrootOS
}

func (n *nativeFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

func (n *nativeFS) Root() string {
	return string(filepath.Separator)
}

// workdir tracks the directory relative paths resolve against.
type workdir interface {
	Getwd() (string, error)
	Chdir(dir string) error
	Resolve(path string) string
}

// osWorkdir uses the process working directory.
// Function fields allow tests to inject failures.
type osWorkdir struct {
	getwd func() (string, error)
	chdir func(dir string) error
}

func (w *osWorkdir) Getwd() (string, error) { return w.getwd() }
func (w *osWorkdir) Chdir(dir string) error { return w.chdir(dir) }
func (w *osWorkdir) Resolve(path string) string {
	return path
}

// virtualWorkdir keeps the working directory as a string, for backends with no
// process state behind them.
type virtualWorkdir struct {
	cwd string
}

func (w *virtualWorkdir) Getwd() (string, error) { return w.cwd, nil }

func (w *virtualWorkdir) Chdir(dir string) error {
	w.cwd = w.Resolve(dir)
	return nil
}

func (w *virtualWorkdir) Resolve(path string) string {
	if path == "" {
		return w.cwd
	}
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) || path[0] == filepath.Separator {
		return filepath.Clean(path)
	}
	return filepath.Join(w.cwd, path)
}

// FS is a filesystem namespace with a working directory.
//
// Every method reports failures as *fs.PathError or *os.LinkError carrying a
// syscall errno, so callers classify errors the same way regardless of backend.
type FS struct {
	backend billy.Filesystem
	wd      workdir
}

// NewOS returns an FS over the native filesystem and the process working directory.
func NewOS() *FS {
	return &FS{
		backend: &nativeFS{},
		wd:      &osWorkdir{getwd: os.Getwd, chdir: os.Chdir},
	}
}

// NewMemory returns an empty in-memory FS whose working directory is the root.
func NewMemory() *FS {
	backend := memfs.New()
	_ = backend.MkdirAll(string(filepath.Separator), 0o755)
	return New(backend)
}

// New returns an FS over an arbitrary billy filesystem. The working directory
// starts at the backend root and is tracked in memory.
func New(backend billy.Filesystem) *FS {
	return &FS{
		backend: backend,
		wd:      &virtualWorkdir{cwd: string(filepath.Separator)},
	}
}

// Backend returns the underlying billy filesystem.
func (f *FS) Backend() billy.Filesystem {
	return f.backend
}

// Resolve maps a caller path onto the backend namespace.
func (f *FS) Resolve(path string) string {
	return f.wd.Resolve(path)
}

// Getwd returns the current working directory.
func (f *FS) Getwd() (string, error) {
	dir, err := f.wd.Getwd()
	if err != nil {
		return "", pathError("getwd", ".", err)
	}
	return dir, nil
}

// Chdir changes the working directory. The target must be an existing directory.
func (f *FS) Chdir(dir string) error {
	if err := f.requireDir("chdir", dir); err != nil {
		return err
	}
	if err := f.wd.Chdir(dir); err != nil {
		return pathError("chdir", dir, err)
	}
	return nil
}

// Stat returns file info for a path (follows symlinks).
func (f *FS) Stat(name string) (os.FileInfo, error) {
	info, err := f.backend.Stat(f.Resolve(name))
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	return info, nil
}

// Lstat returns file info for a path without following symlinks.
func (f *FS) Lstat(name string) (os.FileInfo, error) {
	info, err := f.backend.Lstat(f.Resolve(name))
	if err != nil {
		return nil, pathError("lstat", name, err)
	}
	return info, nil
}

// OpenFile opens name with os-style flags. Unlike the raw billy backends it
// never creates missing parent directories and refuses to open directories.
func (f *FS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	p := f.Resolve(name)
	info, err := f.backend.Stat(p)
	switch {
	case err == nil:
		if info.IsDir() {
			return nil, &fs.PathError{Op: "open", Path: name, Err: syscall.EISDIR}
		}
		if flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: syscall.EEXIST}
		}
	case errors.Is(err, fs.ErrNotExist):
		if flag&os.O_CREATE == 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: syscall.ENOENT}
		}
		if err := f.requireParent("open", name, p); err != nil {
			return nil, err
		}
	default:
		return nil, pathError("open", name, err)
	}

	file, err := f.backend.OpenFile(p, flag, perm)
	if err != nil {
		return nil, pathError("open", name, err)
	}
	return file, nil
}

// ReadDir lists the entries of a directory.
func (f *FS) ReadDir(name string) ([]os.FileInfo, error) {
	if err := f.requireDir("readdir", name); err != nil {
		return nil, err
	}
	entries, err := f.backend.ReadDir(f.Resolve(name))
	if err != nil {
		return nil, pathError("readdir", name, err)
	}
	return entries, nil
}

// Mkdir creates a single directory. The parent must already exist.
func (f *FS) Mkdir(name string, perm os.FileMode) error {
	p := f.Resolve(name)
	if _, err := f.backend.Lstat(p); err == nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: syscall.EEXIST}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return pathError("mkdir", name, err)
	}
	if err := f.requireParent("mkdir", name, p); err != nil {
		return err
	}
	if err := f.backend.MkdirAll(p, perm); err != nil {
		return pathError("mkdir", name, err)
	}
	return nil
}

// MkdirAll creates a directory and any missing parents.
func (f *FS) MkdirAll(name string, perm os.FileMode) error {
	if err := f.backend.MkdirAll(f.Resolve(name), perm); err != nil {
		return pathError("mkdir", name, err)
	}
	return nil
}

// Rename moves oldname to newname. The destination parent must exist.
func (f *FS) Rename(oldname, newname string) error {
	from, to := f.Resolve(oldname), f.Resolve(newname)
	if _, err := f.backend.Lstat(from); err != nil {
		return linkError(oldname, newname, err)
	}
	if err := f.requireParent("rename", newname, to); err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: pe.Err}
		}
		return err
	}
	if err := f.backend.Rename(from, to); err != nil {
		return linkError(oldname, newname, err)
	}
	return nil
}

// Remove deletes a file or an empty directory.
func (f *FS) Remove(name string) error {
	p := f.Resolve(name)
	info, err := f.backend.Lstat(p)
	if err != nil {
		return pathError("remove", name, err)
	}
	if info.IsDir() {
		entries, err := f.backend.ReadDir(p)
		if err != nil {
			return pathError("remove", name, err)
		}
		if len(entries) > 0 {
			return &fs.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
		}
	}
	if err := f.backend.Remove(p); err != nil {
		return pathError("remove", name, err)
	}
	return nil
}

// Chroot returns a billy filesystem rooted at dir.
func (f *FS) Chroot(dir string) (billy.Filesystem, error) {
	if err := f.requireDir("chroot", dir); err != nil {
		return nil, err
	}
	p := f.Resolve(dir)
	if !filepath.IsAbs(p) {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, pathError("chroot", dir, err)
		}
		p = abs
	}
	sub, err := f.backend.Chroot(p)
	if err != nil {
		return nil, pathError("chroot", dir, err)
	}
	return sub, nil
}

func (f *FS) requireDir(op, name string) error {
	info, err := f.backend.Stat(f.Resolve(name))
	if err != nil {
		return pathError(op, name, err)
	}
	if !info.IsDir() {
		return &fs.PathError{Op: op, Path: name, Err: syscall.ENOTDIR}
	}
	return nil
}

func (f *FS) requireParent(op, name, resolved string) error {
	parent := filepath.Dir(resolved)
	info, err := f.backend.Stat(parent)
	if err != nil {
		return pathError(op, name, err)
	}
	if !info.IsDir() {
		return &fs.PathError{Op: op, Path: name, Err: syscall.ENOTDIR}
	}
	return nil
}

// pathError normalises backend failures. Errors that already carry a path are
// kept; bare sentinels from in-memory backends are mapped to errnos.
func pathError(op, name string, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return err
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return err
	}
	return &fs.PathError{Op: op, Path: name, Err: errno(err)}
}

func linkError(oldname, newname string, err error) error {
	var le *os.LinkError
	if errors.As(err, &le) {
		return err
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: errno(err)}
}

func errno(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, fs.ErrExist):
		return syscall.EEXIST
	case errors.Is(err, fs.ErrPermission):
		return syscall.EACCES
	}
	return err
}

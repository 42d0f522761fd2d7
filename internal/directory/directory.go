// Package directory provides directory management over an fsutil namespace.
//
// Every failure is an errutil error classified from the underlying filesystem
// error, so callers can dispatch on kinds such as NotFound or DirectoryNotEmpty.
package directory

import (
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/Cyclone1070/fio/internal/config"
	"github.com/Cyclone1070/fio/internal/errutil"
	"github.com/Cyclone1070/fio/internal/fsutil"
	"github.com/Cyclone1070/fio/internal/gitutil"
)

// Manager performs directory operations. Apart from the working directory held
// by its FS it is stateless.
type Manager struct {
	fs      *fsutil.FS
	log     log.FieldLogger
	dirPerm os.FileMode
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger mutations are reported to.
func WithLogger(l log.FieldLogger) Option {
	return func(m *Manager) { m.log = l }
}

// WithConfig applies the directory permission from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(m *Manager) { m.dirPerm = cfg.IO.DirMode() }
}

// New returns a Manager over fsys.
func New(fsys *fsutil.FS, opts ...Option) *Manager {
	if fsys == nil {
		panic("fsys is required")
	}
	m := &Manager{fs: fsys, log: log.StandardLogger()}
	WithConfig(config.DefaultConfig())(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CurrentDirectory returns the working directory.
func (m *Manager) CurrentDirectory() (string, error) {
	dir, err := m.fs.Getwd()
	if err != nil {
		return "", errutil.Classify("getwd", "", err)
	}
	return dir, nil
}

// SetCurrentDirectory changes the working directory. The last call wins.
func (m *Manager) SetCurrentDirectory(path string) error {
	if err := m.fs.Chdir(path); err != nil {
		return errutil.Classify("chdir", path, err)
	}
	m.log.WithField("path", path).Debug("changed directory")
	return nil
}

// ListEntries returns the names of the immediate children of path, sorted
// lexically. An empty path lists the working directory.
func (m *Manager) ListEntries(path string) ([]string, error) {
	infos, err := m.readDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ListVisible is ListEntries without the entries excluded by .gitignore files
// in the listed tree.
func (m *Manager) ListVisible(path string) ([]string, error) {
	if path == "" {
		path = "."
	}
	infos, err := m.readDir(path)
	if err != nil {
		return nil, err
	}
	root, err := m.fs.Chroot(path)
	if err != nil {
		return nil, errutil.Classify("list", path, err)
	}
	matcher, err := gitutil.NewIgnoreMatcher(root)
	if err != nil {
		return nil, errutil.Classify("list", path, err)
	}
	return visible(infos, matcher), nil
}

// visible returns the sorted names of infos that matcher does not ignore.
func visible(infos []os.FileInfo, matcher gitutil.Matcher) []string {
	var names []string
	for _, info := range infos {
		if matcher.ShouldIgnore(info.Name(), info.IsDir()) {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names
}

func (m *Manager) readDir(path string) ([]os.FileInfo, error) {
	if path == "" {
		path = "."
	}
	infos, err := m.fs.ReadDir(path)
	if err != nil {
		return nil, errutil.Classify("list", path, err)
	}
	return infos, nil
}

// MakeDirectory creates a single directory. The parent must exist and the
// target must not.
func (m *Manager) MakeDirectory(path string) error {
	if err := m.fs.Mkdir(path, m.dirPerm); err != nil {
		return errutil.Classify("mkdir", path, err)
	}
	m.log.WithField("path", path).Debug("created directory")
	return nil
}

// MakeDirectories creates path and any missing parents. An existing directory
// is not an error.
func (m *Manager) MakeDirectories(path string) error {
	if info, err := m.fs.Stat(path); err == nil && !info.IsDir() {
		return errutil.OpError(errutil.AlreadyExists, "mkdir", path, nil)
	}
	if err := m.fs.MkdirAll(path, m.dirPerm); err != nil {
		return errutil.Classify("mkdir", path, err)
	}
	m.log.WithField("path", path).Debug("created directories")
	return nil
}

// Rename moves oldPath to newPath.
func (m *Manager) Rename(oldPath, newPath string) error {
	if err := m.fs.Rename(oldPath, newPath); err != nil {
		return errutil.Classify("rename", oldPath, err)
	}
	m.log.WithFields(log.Fields{"from": oldPath, "to": newPath}).Debug("renamed")
	return nil
}

// RemoveFile deletes a file. Directories are refused with IsADirectory.
func (m *Manager) RemoveFile(path string) error {
	info, err := m.fs.Lstat(path)
	if err != nil {
		return errutil.Classify("remove", path, err)
	}
	if info.IsDir() {
		return errutil.OpError(errutil.IsADirectory, "remove", path, nil)
	}
	if err := m.fs.Remove(path); err != nil {
		return errutil.Classify("remove", path, err)
	}
	m.log.WithField("path", path).Debug("removed file")
	return nil
}

// RemoveEmptyDirectory deletes an empty directory. A directory with entries is
// left untouched and reported as DirectoryNotEmpty.
func (m *Manager) RemoveEmptyDirectory(path string) error {
	info, err := m.fs.Lstat(path)
	if err != nil {
		return errutil.Classify("rmdir", path, err)
	}
	if !info.IsDir() {
		return errutil.OpError(errutil.NotADirectory, "rmdir", path, nil)
	}
	if err := m.fs.Remove(path); err != nil {
		return errutil.Classify("rmdir", path, err)
	}
	m.log.WithField("path", path).Debug("removed directory")
	return nil
}

// Exists reports whether path names an existing entry.
func (m *Manager) Exists(path string) bool {
	_, err := m.fs.Lstat(path)
	return err == nil
}

// IsDir reports whether path names an existing directory.
func (m *Manager) IsDir(path string) bool {
	info, err := m.fs.Stat(path)
	return err == nil && info.IsDir()
}

func join(dir, name string) string {
	return filepath.Join(dir, name)
}

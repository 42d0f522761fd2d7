package directory

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/Cyclone1070/fio/internal/errutil"
)

// PartialRemovalError reports a tree removal that could not delete everything.
// Remaining is sorted lexically. It unwraps to the first classified failure, so
// its kind is that failure's kind.
type PartialRemovalError struct {
	Root      string
	Remaining []string
	Errs      error
}

func (e *PartialRemovalError) Error() string {
	errs := multierr.Errors(e.Errs)
	return fmt.Sprintf("partial removal of %s: %d failure(s), first: %v; remaining: %s",
		e.Root, len(errs), errs[0], strings.Join(e.Remaining, ", "))
}

func (e *PartialRemovalError) Unwrap() error {
	return multierr.Errors(e.Errs)[0]
}

// Errors returns every failure in the order it happened.
func (e *PartialRemovalError) Errors() []error {
	return multierr.Errors(e.Errs)
}

type removal struct {
	errs      error
	remaining []string
}

func (r *removal) fail(path string, err error) {
	r.errs = multierr.Append(r.errs, err)
	r.remaining = append(r.remaining, path)
}

// RemoveTree deletes path and everything below it. Removal is best effort: it
// continues past failures and never removes a directory whose contents could
// not be removed. On failure it returns a *PartialRemovalError listing the
// entries that remain. A path that is not a directory is refused with
// NotADirectory.
func (m *Manager) RemoveTree(path string) error {
	info, err := m.fs.Lstat(path)
	if err != nil {
		return errutil.Classify("rmtree", path, err)
	}
	if !info.IsDir() {
		return errutil.OpError(errutil.NotADirectory, "rmtree", path, nil)
	}

	r := &removal{}
	m.removeAll(path, r)
	if r.errs == nil {
		m.log.WithField("path", path).Debug("removed tree")
		return nil
	}
	m.log.WithError(r.errs).WithFields(log.Fields{
		"path":      path,
		"remaining": len(r.remaining),
	}).Warn("tree removal incomplete")
	sort.Strings(r.remaining)
	return &PartialRemovalError{Root: path, Remaining: r.remaining, Errs: r.errs}
}

// removeAll reports whether dir itself was removed.
func (m *Manager) removeAll(dir string, r *removal) bool {
	infos, err := m.fs.ReadDir(dir)
	if err != nil {
		r.fail(dir, errutil.Classify("rmtree", dir, err))
		return false
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	clean := true
	for _, info := range infos {
		child := join(dir, info.Name())
		if info.IsDir() {
			if !m.removeAll(child, r) {
				clean = false
			}
			continue
		}
		if err := m.fs.Remove(child); err != nil {
			r.fail(child, errutil.Classify("rmtree", child, err))
			clean = false
			continue
		}
		m.log.WithField("path", child).Debug("removed")
	}
	if !clean {
		r.remaining = append(r.remaining, dir)
		return false
	}
	if err := m.fs.Remove(dir); err != nil {
		r.fail(dir, errutil.Classify("rmtree", dir, err))
		return false
	}
	return true
}

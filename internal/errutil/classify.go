package errutil

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// Classify maps err onto the taxonomy. Errors that already carry an *Error are
// returned unchanged. Operating-system failures are mapped from their errno or
// io/fs sentinel; those that match nothing more specific become IO. Anything
// else becomes Root.
func Classify(op, path string, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if path == "" {
		var pe *fs.PathError
		var le *os.LinkError
		switch {
		case errors.As(err, &pe):
			path = pe.Path
		case errors.As(err, &le):
			path = le.Old
		}
	}

	return &Error{Kind: kindFor(err), Op: op, Path: path, Cause: err}
}

func kindFor(err error) Kind {
	// ENOTEMPTY also satisfies fs.ErrExist, so it must be tested first.
	switch {
	case errors.Is(err, syscall.ENOTEMPTY):
		return DirectoryNotEmpty
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrExist):
		return AlreadyExists
	case errors.Is(err, fs.ErrPermission):
		return Permission
	case errors.Is(err, fs.ErrClosed):
		return ClosedHandle
	case errors.Is(err, syscall.ESPIPE):
		return NotSeekable
	case errors.Is(err, syscall.EISDIR):
		return IsADirectory
	case errors.Is(err, syscall.ENOTDIR):
		return NotADirectory
	}

	var (
		pe    *fs.PathError
		le    *os.LinkError
		se    *os.SyscallError
		errno syscall.Errno
	)
	if errors.As(err, &pe) || errors.As(err, &le) || errors.As(err, &se) || errors.As(err, &errno) {
		return IO
	}
	return Root
}

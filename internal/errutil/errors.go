package errutil

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// Error is a classified failure. Frames lists, innermost first, the frames the
// error crossed without being handled.
type Error struct {
	Kind    Kind
	Op      string
	Path    string
	Message string
	Cause   error
	Frames  []string
}

func (e *Error) Error() string {
	parts := []string{string(e.Kind)}
	if subject := strings.TrimSpace(e.Op + " " + e.Path); subject != "" {
		parts = append(parts, subject)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Cause != nil {
		parts = append(parts, e.causeText())
	}
	return strings.Join(parts, ": ")
}

// causeText drops the op and path an *fs.PathError cause would repeat.
func (e *Error) causeText() string {
	var pe *fs.PathError
	if errors.As(e.Cause, &pe) && pe.Path == e.Path && pe.Err != nil {
		return pe.Err.Error()
	}
	return e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches a Kind target by ancestry, so errors.Is(err, IO) holds for every
// IOError descendant.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	if !ok {
		return false
	}
	return IsA(e.Kind, k)
}

// Lineage returns the error's kind followed by its ancestors.
func (e *Error) Lineage() []Kind { return Lineage(e.Kind) }

// New raises an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf raises an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// OpError raises an error of the given kind attributed to an operation on path.
func OpError(kind Kind, op, path string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Cause: cause}
}

// Wrap raises an error of the given kind with cause as its predecessor in the chain.
func Wrap(cause error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, classifying err
// when it carries none. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return AsError(err).Kind
}

// AsError returns the first *Error in err's chain, or a classification of err
// when the chain holds none. It returns nil for a nil error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Classify("", "", err)
}

// Propagate records that err crossed frame unhandled and returns the result.
// The record in err's chain is never modified: a copy with frame appended
// takes its place, so an error value returned twice does not share frames.
// Wrappers around the record are kept and errors.As finds the copy. For a
// multierr group only the primary error gains the frame. Errors with no
// record are classified first. An empty frame leaves err untouched.
func Propagate(err error, frame string) error {
	if err == nil || frame == "" {
		return err
	}
	if errs := multierr.Errors(err); len(errs) > 1 {
		errs[0] = Propagate(errs[0], frame)
		return multierr.Combine(errs...)
	}

	var e *Error
	if !errors.As(err, &e) {
		c := Classify("", "", err)
		c.Frames = []string{frame}
		return c
	}
	c := *e
	c.Frames = append(slices.Clip(e.Frames), frame)

	switch w := err.(type) {
	case *Error:
		return &c
	case *framed:
		return &framed{err: w.err, rec: &c}
	}
	return &framed{err: err, rec: &c}
}

// framed keeps a wrapped error's text and chain while errors.As yields rec,
// the record carrying the frames.
type framed struct {
	err error
	rec *Error
}

func (f *framed) Error() string { return f.err.Error() }
func (f *framed) Unwrap() error { return f.err }

func (f *framed) As(target any) bool {
	if t, ok := target.(**Error); ok {
		*t = f.rec
		return true
	}
	return false
}

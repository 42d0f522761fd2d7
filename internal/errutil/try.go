package errutil

import (
	"go.uber.org/multierr"
)

// Clause configures the frame established by Try.
type Clause interface {
	apply(*frame)
}

type clauseFunc func(*frame)

func (f clauseFunc) apply(fr *frame) { f(fr) }

// HandlerFunc consumes a raised error. Returning nil marks the error handled;
// returning an error raises it from the handling frame.
type HandlerFunc func(err error) error

type handler struct {
	kinds []Kind
	fn    HandlerFunc
}

func (h handler) guards(kind Kind) bool {
	for _, k := range h.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

type frame struct {
	name     string
	handlers []handler
	catchAll []HandlerFunc
	cleanups []func() error
}

// Catch declares a handler guarding kinds. Handlers are considered in the
// order they are declared.
func Catch(fn HandlerFunc, kinds ...Kind) Clause {
	return clauseFunc(func(fr *frame) {
		if len(kinds) == 0 {
			fr.catchAll = append(fr.catchAll, fn)
			return
		}
		fr.handlers = append(fr.handlers, handler{kinds: kinds, fn: fn})
	})
}

// CatchAll declares a handler consulted only when no kinded handler matches.
func CatchAll(fn HandlerFunc) Clause {
	return Catch(fn)
}

// Finally declares a cleanup action. Cleanups run in declaration order after
// the body and any handler, on every exit path including panics.
func Finally(fn func() error) Clause {
	return clauseFunc(func(fr *frame) {
		fr.cleanups = append(fr.cleanups, fn)
	})
}

// Named names the frame. Errors leaving a named frame unhandled record the
// name in their causal chain.
func Named(name string) Clause {
	return clauseFunc(func(fr *frame) {
		fr.name = name
	})
}

// Try runs body inside a frame built from clauses.
//
// When body fails, the raised kind's lineage is walked from the kind itself up
// to Root; at each step the first declared handler guarding that kind is
// selected. Catch-all handlers are consulted last. At most one handler runs.
// An error nobody handles leaves the frame with the frame's name appended to
// its causal chain.
//
// Cleanup failures never replace the primary error; they are appended to it.
func Try(body func() error, clauses ...Clause) (err error) {
	fr := &frame{}
	for _, c := range clauses {
		c.apply(fr)
	}

	defer func() {
		for _, cleanup := range fr.cleanups {
			if cerr := cleanup(); cerr != nil {
				err = multierr.Append(err, Propagate(cerr, fr.name))
			}
		}
	}()

	raised := body()
	if raised == nil {
		return nil
	}

	fn, ok := fr.dispatch(KindOf(raised))
	if !ok {
		return Propagate(raised, fr.name)
	}
	return Propagate(fn(raised), fr.name)
}

func (fr *frame) dispatch(kind Kind) (HandlerFunc, bool) {
	for _, k := range Lineage(kind) {
		for _, h := range fr.handlers {
			if h.guards(k) {
				return h.fn, true
			}
		}
	}
	if len(fr.catchAll) > 0 {
		return fr.catchAll[0], true
	}
	return nil, false
}

// Package errutil implements the error taxonomy shared by the file and directory
// packages: classified error kinds arranged in a single tree rooted at Error,
// typed error records carrying a causal chain, and frame-scoped handler dispatch.
package errutil

import (
	"fmt"
	"sync"
)

// Kind classifies an error. Kinds form a tree whose parent links are held in a
// Taxonomy rather than in Go types, so handler dispatch can walk a kind's
// ancestry without reflection.
//
// Kind also implements error so that errors.Is(err, errutil.NotFound) matches
// any error whose kind is NotFound or one of its descendants.
type Kind string

func (k Kind) Error() string { return string(k) }

// Built-in kinds.
const (
	Root Kind = "Error"

	IO                Kind = "IOError"
	NotFound          Kind = "NotFoundError"
	AlreadyExists     Kind = "AlreadyExistsError"
	NotReadable       Kind = "NotReadableError"
	NotWritable       Kind = "NotWritableError"
	NotSeekable       Kind = "NotSeekableError"
	ClosedHandle      Kind = "ClosedHandleError"
	DirectoryNotEmpty Kind = "DirectoryNotEmptyError"
	IsADirectory      Kind = "IsADirectoryError"
	NotADirectory     Kind = "NotADirectoryError"
	Permission        Kind = "PermissionError"

	InvalidArgument Kind = "InvalidArgumentError"
	Encoding        Kind = "EncodingError"
)

var builtins = []struct{ kind, parent Kind }{
	{IO, Root},
	{NotFound, IO},
	{AlreadyExists, IO},
	{NotReadable, IO},
	{NotWritable, IO},
	{NotSeekable, IO},
	{ClosedHandle, IO},
	{DirectoryNotEmpty, IO},
	{IsADirectory, IO},
	{NotADirectory, IO},
	{Permission, IO},
	{InvalidArgument, Root},
	{Encoding, InvalidArgument},
}

// Taxonomy records the parent of every declared kind. Root has no parent.
type Taxonomy struct {
	mu      sync.RWMutex
	parents map[Kind]Kind
}

// NewTaxonomy returns a taxonomy pre-populated with the built-in kinds.
func NewTaxonomy() *Taxonomy {
	t := &Taxonomy{parents: make(map[Kind]Kind, len(builtins)+1)}
	t.parents[Root] = ""
	for _, b := range builtins {
		t.parents[b.kind] = b.parent
	}
	return t
}

// Declare adds kind as a child of parent. Redeclaring a kind with the same
// parent is a no-op so package-level declarations stay idempotent.
func (t *Taxonomy) Declare(kind, parent Kind) (Kind, error) {
	if kind == "" {
		return "", Newf(InvalidArgument, "kind name is required")
	}
	if parent == "" {
		parent = Root
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.parents[parent]; !ok {
		return "", Newf(InvalidArgument, "parent kind %q is not declared", parent)
	}
	if existing, ok := t.parents[kind]; ok {
		if existing == parent {
			return kind, nil
		}
		return "", Newf(AlreadyExists, "kind %q is already declared under %q", kind, existing)
	}
	t.parents[kind] = parent
	return kind, nil
}

// Known reports whether kind has been declared.
func (t *Taxonomy) Known(kind Kind) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.parents[kind]
	return ok
}

// Parent returns the parent of kind. ok is false for Root and for undeclared kinds.
func (t *Taxonomy) Parent(kind Kind) (parent Kind, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	parent, ok = t.parents[kind]
	if parent == "" {
		return "", false
	}
	return parent, ok
}

// Lineage returns kind followed by each of its ancestors up to Root.
// An undeclared kind is treated as a direct child of Root.
func (t *Taxonomy) Lineage(kind Kind) []Kind {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lineage := []Kind{kind}
	if _, ok := t.parents[kind]; !ok && kind != Root {
		return append(lineage, Root)
	}
	for cur := kind; ; {
		parent := t.parents[cur]
		if parent == "" {
			return lineage
		}
		lineage = append(lineage, parent)
		cur = parent
	}
}

// IsA reports whether kind equals ancestor or descends from it.
func (t *Taxonomy) IsA(kind, ancestor Kind) bool {
	for _, k := range t.Lineage(kind) {
		if k == ancestor {
			return true
		}
	}
	return false
}

// kinds is the process-wide taxonomy every Error is classified against.
var kinds = NewTaxonomy()

// Declare adds a user-defined kind under parent in the process-wide taxonomy.
// An empty parent means Root.
func Declare(kind, parent Kind) (Kind, error) {
	return kinds.Declare(kind, parent)
}

// MustDeclare is Declare for package-level variable initialisation.
func MustDeclare(kind, parent Kind) Kind {
	k, err := Declare(kind, parent)
	if err != nil {
		panic(fmt.Sprintf("errutil: %v", err))
	}
	return k
}

// Lineage returns kind and its ancestors from the process-wide taxonomy.
func Lineage(kind Kind) []Kind { return kinds.Lineage(kind) }

// IsA reports whether kind descends from ancestor in the process-wide taxonomy.
func IsA(kind, ancestor Kind) bool { return kinds.IsA(kind, ancestor) }

// Parent returns kind's parent in the process-wide taxonomy.
func Parent(kind Kind) (Kind, bool) { return kinds.Parent(kind) }

// Known reports whether kind is declared in the process-wide taxonomy.
func Known(kind Kind) bool { return kinds.Known(kind) }

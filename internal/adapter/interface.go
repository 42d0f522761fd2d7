// Package adapter runs scripted batches of file and directory operations.
//
// A script is a list of steps, each naming an Op and carrying its arguments as
// a loosely typed map. Ops decode their arguments into typed requests, run
// them against an Env, and answer with JSON.
package adapter

import (
	"context"

	"github.com/Cyclone1070/fio/internal/directory"
	"github.com/Cyclone1070/fio/internal/file"
	"github.com/Cyclone1070/fio/internal/fsutil"
)

// Op is a single operation a batch step can invoke.
type Op interface {
	// Name returns the identifier steps use to select the op
	Name() string

	// Description returns a human-readable description
	Description() string

	// Execute decodes args, runs the operation and returns its JSON response
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Env is the namespace ops act on.
type Env struct {
	FS   *fsutil.FS
	Dirs *directory.Manager
	// Encoding is used by text ops whose step names none.
	Encoding string
	FileOpts []file.Option
}

// NewEnv returns an Env over fsys with a directory manager built from the
// same namespace.
func NewEnv(fsys *fsutil.FS, encoding string, dirOpts []directory.Option, fileOpts ...file.Option) *Env {
	return &Env{
		FS:       fsys,
		Dirs:     directory.New(fsys, dirOpts...),
		Encoding: encoding,
		FileOpts: fileOpts,
	}
}

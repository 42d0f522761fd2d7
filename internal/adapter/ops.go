package adapter

import (
	"context"

	"github.com/Cyclone1070/fio/internal/file"
)

func (e *Env) encoding(requested string) string {
	if requested != "" {
		return requested
	}
	return e.Encoding
}

// ReadText returns up to Limit characters from the start of a file.
func ReadText(_ context.Context, env *Env, req ReadTextRequest) (ReadTextResponse, error) {
	n := req.Limit
	if n == 0 {
		n = -1
	}
	var resp ReadTextResponse
	err := file.WithText(env.FS, req.Path, file.Mode{Access: file.Read}, env.encoding(req.Encoding), func(f *file.TextFile) error {
		s, err := f.Read(n)
		resp.Content = s
		return err
	}, env.FileOpts...)
	return resp, err
}

// ReadLines returns every line of a file.
func ReadLines(_ context.Context, env *Env, req ReadLinesRequest) (ReadLinesResponse, error) {
	resp := ReadLinesResponse{Lines: []string{}}
	err := file.WithText(env.FS, req.Path, file.Mode{Access: file.Read}, env.encoding(req.Encoding), func(f *file.TextFile) error {
		lines, err := f.ReadAllLines()
		if lines != nil {
			resp.Lines = lines
		}
		return err
	}, env.FileOpts...)
	return resp, err
}

// WriteText writes Content through a handle opened with the requested mode.
func WriteText(_ context.Context, env *Env, req WriteTextRequest) (WriteTextResponse, error) {
	modeStr := req.Mode
	if modeStr == "" {
		modeStr = "w"
	}
	mode, err := file.ParseMode(modeStr)
	if err != nil {
		return WriteTextResponse{}, err
	}
	var resp WriteTextResponse
	err = file.WithText(env.FS, req.Path, mode, env.encoding(req.Encoding), func(f *file.TextFile) error {
		n, err := f.Write(req.Content)
		resp.Written = n
		return err
	}, env.FileOpts...)
	return resp, err
}

// List returns the sorted entries of a directory.
func List(_ context.Context, env *Env, req ListRequest) (ListResponse, error) {
	list := env.Dirs.ListEntries
	if req.Visible {
		list = env.Dirs.ListVisible
	}
	entries, err := list(req.Path)
	if err != nil {
		return ListResponse{}, err
	}
	if entries == nil {
		entries = []string{}
	}
	return ListResponse{Entries: entries}, nil
}

// Mkdir creates a directory.
func Mkdir(_ context.Context, env *Env, req MkdirRequest) (PathResponse, error) {
	mkdir := env.Dirs.MakeDirectory
	if req.Parents {
		mkdir = env.Dirs.MakeDirectories
	}
	return PathResponse{Path: req.Path}, mkdir(req.Path)
}

// Rename moves an entry.
func Rename(_ context.Context, env *Env, req RenameRequest) (PathResponse, error) {
	return PathResponse{Path: req.To}, env.Dirs.Rename(req.From, req.To)
}

// Remove deletes a file.
func Remove(_ context.Context, env *Env, req PathRequest) (PathResponse, error) {
	return PathResponse{Path: req.Path}, env.Dirs.RemoveFile(req.Path)
}

// Rmdir deletes an empty directory.
func Rmdir(_ context.Context, env *Env, req PathRequest) (PathResponse, error) {
	return PathResponse{Path: req.Path}, env.Dirs.RemoveEmptyDirectory(req.Path)
}

// Rmtree deletes a directory tree.
func Rmtree(_ context.Context, env *Env, req PathRequest) (PathResponse, error) {
	return PathResponse{Path: req.Path}, env.Dirs.RemoveTree(req.Path)
}

// Chdir changes the working directory.
func Chdir(_ context.Context, env *Env, req PathRequest) (PathResponse, error) {
	return PathResponse{Path: req.Path}, env.Dirs.SetCurrentDirectory(req.Path)
}

// Pwd reports the working directory.
func Pwd(_ context.Context, env *Env, _ EmptyRequest) (PathResponse, error) {
	dir, err := env.Dirs.CurrentDirectory()
	return PathResponse{Path: dir}, err
}

// Package gitutil filters directory listings through .gitignore rules.
package gitutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreReadError is returned when the ignore files under a root cannot be read.
type IgnoreReadError struct {
	Root  string
	Cause error
}

func (e *IgnoreReadError) Error() string {
	return fmt.Sprintf("failed to read ignore rules under %s: %v", e.Root, e.Cause)
}
func (e *IgnoreReadError) Unwrap() error { return e.Cause }

// Matcher decides whether a path relative to its root is ignored.
type Matcher interface {
	ShouldIgnore(relativePath string, isDir bool) bool
}

// IgnoreMatcher applies every .gitignore found under a root, honouring nested
// files the way git does.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads the ignore rules of the tree rooted at root. A tree
// without any .gitignore yields a NoOpMatcher.
func NewIgnoreMatcher(root billy.Filesystem) (Matcher, error) {
	if root == nil {
		panic("root is required")
	}
	patterns, err := gitignore.ReadPatterns(root, nil)
	if err != nil {
		return nil, &IgnoreReadError{Root: root.Root(), Cause: err}
	}
	if len(patterns) == 0 {
		return NoOpMatcher{}, nil
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore reports whether relativePath matches the loaded rules.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

// splitPath splits a path into gitignore segments, dropping empty and "."
// segments.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}

// NoOpMatcher never ignores anything.
type NoOpMatcher struct{}

func (NoOpMatcher) ShouldIgnore(string, bool) bool { return false }

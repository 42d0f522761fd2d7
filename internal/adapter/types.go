package adapter

import (
	"github.com/Cyclone1070/fio/internal/errutil"
)

func requirePath(field, value string) error {
	if value == "" {
		return errutil.Newf(errutil.InvalidArgument, "%s is required", field)
	}
	return nil
}

// PathRequest names a single path.
type PathRequest struct {
	Path string `mapstructure:"path"`
}

func (r PathRequest) Validate() error { return requirePath("path", r.Path) }

// PathResponse echoes the path an operation acted on.
type PathResponse struct {
	Path string `json:"path"`
}

// ReadTextRequest reads characters from a text file. A zero Limit reads the
// whole file.
type ReadTextRequest struct {
	Path     string `mapstructure:"path"`
	Encoding string `mapstructure:"encoding"`
	Limit    int    `mapstructure:"limit"`
}

func (r ReadTextRequest) Validate() error {
	if err := requirePath("path", r.Path); err != nil {
		return err
	}
	if r.Limit < 0 {
		return errutil.Newf(errutil.InvalidArgument, "limit must be >= 0, got %d", r.Limit)
	}
	return nil
}

// ReadTextResponse carries decoded text.
type ReadTextResponse struct {
	Content string `json:"content"`
}

// ReadLinesRequest reads every line of a text file.
type ReadLinesRequest struct {
	Path     string `mapstructure:"path"`
	Encoding string `mapstructure:"encoding"`
}

func (r ReadLinesRequest) Validate() error { return requirePath("path", r.Path) }

// ReadLinesResponse carries lines with their terminators.
type ReadLinesResponse struct {
	Lines []string `json:"lines"`
}

// WriteTextRequest writes text through a handle opened with Mode, which
// defaults to "w".
type WriteTextRequest struct {
	Path     string `mapstructure:"path"`
	Content  string `mapstructure:"content"`
	Encoding string `mapstructure:"encoding"`
	Mode     string `mapstructure:"mode"`
}

func (r WriteTextRequest) Validate() error { return requirePath("path", r.Path) }

// WriteTextResponse reports how many characters were written.
type WriteTextResponse struct {
	Written int `json:"written"`
}

// ListRequest lists a directory. Visible hides entries excluded by .gitignore.
type ListRequest struct {
	Path    string `mapstructure:"path"`
	Visible bool   `mapstructure:"visible"`
}

// ListResponse carries sorted entry names.
type ListResponse struct {
	Entries []string `json:"entries"`
}

// MkdirRequest creates a directory; Parents also creates missing parents.
type MkdirRequest struct {
	Path    string `mapstructure:"path"`
	Parents bool   `mapstructure:"parents"`
}

func (r MkdirRequest) Validate() error { return requirePath("path", r.Path) }

// RenameRequest moves From to To.
type RenameRequest struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

func (r RenameRequest) Validate() error {
	if err := requirePath("from", r.From); err != nil {
		return err
	}
	return requirePath("to", r.To)
}

// EmptyRequest takes no arguments.
type EmptyRequest struct{}

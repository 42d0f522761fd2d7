package errutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
)

// Report describes an error that reached the outermost frame.
type Report struct {
	Kind    Kind
	Message string
	Lineage []Kind
	Frames  []string
	// Also holds failures raised alongside the primary error, such as
	// cleanup errors appended by Try.
	Also []string
}

// NewReport builds the termination report for err.
func NewReport(err error) Report {
	errs := multierr.Errors(err)
	primary := AsError(errs[0])
	r := Report{
		Kind:    primary.Kind,
		Message: errs[0].Error(),
		Lineage: primary.Lineage(),
		Frames:  primary.Frames,
	}
	for _, extra := range errs[1:] {
		r.Also = append(r.Also, extra.Error())
	}
	return r
}

// String renders the report as plain text.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unhandled %s\n", r.Message)
	lineage := make([]string, len(r.Lineage))
	for i, k := range r.Lineage {
		lineage[i] = string(k)
	}
	fmt.Fprintf(&b, "  kind: %s\n", strings.Join(lineage, " < "))
	for _, f := range r.Frames {
		fmt.Fprintf(&b, "  at %s\n", f)
	}
	for _, a := range r.Also {
		fmt.Fprintf(&b, "  also: %s\n", a)
	}
	return b.String()
}

// Terminator ends the process for errors that no frame handled.
type Terminator struct {
	Out    io.Writer
	Render func(Report) string
	Exit   func(code int)
}

// DefaultTerminator writes plain reports to stderr and exits with status 1.
var DefaultTerminator = &Terminator{
	Out:  os.Stderr,
	Exit: os.Exit,
}

// Terminate reports err and exits. A nil error is a no-op.
func (t *Terminator) Terminate(err error) {
	if err == nil {
		return
	}
	r := NewReport(err)
	render := t.Render
	if render == nil {
		render = Report.String
	}
	_, _ = io.WriteString(t.Out, render(r))
	t.Exit(1)
}

// Exit terminates the process through DefaultTerminator when err is not nil.
func Exit(err error) {
	DefaultTerminator.Terminate(err)
}

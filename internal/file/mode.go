package file

import (
	"os"
	"strings"

	"github.com/Cyclone1070/fio/internal/errutil"
)

// Access selects how a handle opens its target.
type Access int

const (
	// Read opens an existing file.
	Read Access = iota
	// Write creates the file or truncates an existing one.
	Write
	// Append creates the file if needed and writes at its end.
	Append
	// Create creates the file and fails if it already exists.
	Create
)

var accessLetters = map[Access]byte{Read: 'r', Write: 'w', Append: 'a', Create: 'x'}

// Mode is the full open mode of a handle.
type Mode struct {
	Access Access
	// Update adds the missing direction: reading for Write/Append/Create,
	// writing for Read.
	Update bool
	Binary bool
}

// ParseMode parses a mode string such as "r", "rb", "w+", "a+b" or "xt".
// Exactly one of r, w, a, x is required; "+" and one of "b"/"t" are optional
// and may appear in any order.
func ParseMode(s string) (Mode, error) {
	var (
		m                          Mode
		haveAccess, plus, haveKind bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case 'r', 'w', 'a', 'x':
			if haveAccess {
				return Mode{}, badMode(s)
			}
			haveAccess = true
			switch c {
			case 'r':
				m.Access = Read
			case 'w':
				m.Access = Write
			case 'a':
				m.Access = Append
			case 'x':
				m.Access = Create
			}
		case '+':
			if plus {
				return Mode{}, badMode(s)
			}
			plus = true
			m.Update = true
		case 'b', 't':
			if haveKind {
				return Mode{}, badMode(s)
			}
			haveKind = true
			m.Binary = c == 'b'
		default:
			return Mode{}, badMode(s)
		}
	}
	if !haveAccess {
		return Mode{}, badMode(s)
	}
	return m, nil
}

func badMode(s string) error {
	return errutil.Newf(errutil.InvalidArgument, "invalid mode %q", s)
}

// String renders the canonical mode string. Text mode has no suffix.
func (m Mode) String() string {
	var b strings.Builder
	b.WriteByte(accessLetters[m.Access])
	if m.Update {
		b.WriteByte('+')
	}
	if m.Binary {
		b.WriteByte('b')
	}
	return b.String()
}

// Readable reports whether the mode permits reading.
func (m Mode) Readable() bool {
	return m.Access == Read || m.Update
}

// Writable reports whether the mode permits writing.
func (m Mode) Writable() bool {
	return m.Access != Read || m.Update
}

// flags maps the mode onto os.OpenFile flags.
func (m Mode) flags() int {
	var flag int
	switch m.Access {
	case Read:
		flag = os.O_RDONLY
	case Write:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case Append:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case Create:
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	if m.Update {
		flag &^= os.O_WRONLY
		flag |= os.O_RDWR
	}
	return flag
}

package file

import (
	"strings"
	"unicode/utf8"
)

// TextFile is a handle that decodes and encodes text in a fixed encoding.
// Counts passed to and returned from its methods are characters; Tell and Seek
// still work in bytes.
type TextFile struct {
	stream
	codec *codec
}

// Encoding returns the canonical name of the handle's encoding.
func (f *TextFile) Encoding() string {
	return f.codec.name
}

// nextRune decodes the character at the cursor without consuming it.
// size is 0 at end of file.
func (f *TextFile) nextRune() (r rune, size int, err error) {
	p, err := f.peek(maxUnitBytes)
	if err != nil {
		return 0, 0, err
	}
	if len(p) == 0 {
		return 0, 0, nil
	}
	r, size, err = f.codec.decodeRune(p, len(p) < maxUnitBytes)
	if err != nil {
		return 0, 0, f.fail("read", err)
	}
	return r, size, nil
}

// readRunes decodes up to n characters (n < 0 means no limit), stopping after
// the first '\n' when line is set.
func (f *TextFile) readRunes(op string, n int, line bool) (string, error) {
	if err := f.checkReadable(op); err != nil {
		return "", err
	}
	var b strings.Builder
	for count := 0; n < 0 || count < n; count++ {
		r, size, err := f.nextRune()
		if err != nil {
			return "", err
		}
		if size == 0 {
			break
		}
		f.consume(size)
		b.WriteRune(r)
		if line && r == '\n' {
			break
		}
	}
	return b.String(), nil
}

// Read returns up to n characters from the cursor. n < 0 reads to the end of
// the file. At end of file it returns "" and no error.
func (f *TextFile) Read(n int) (string, error) {
	return f.readRunes("read", n, false)
}

// ReadLine returns characters up to and including the next '\n', or to the end
// of the file. n >= 0 caps the result at n characters.
func (f *TextFile) ReadLine(n int) (string, error) {
	return f.readRunes("readline", n, true)
}

// ReadAllLines returns the remaining lines with their terminators.
func (f *TextFile) ReadAllLines() ([]string, error) {
	var lines []string
	for {
		line, err := f.ReadLine(-1)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// Write encodes s and writes it at the cursor, or at the end of the file in
// append mode. It returns the number of characters written.
func (f *TextFile) Write(s string) (int, error) {
	if err := f.checkWritable("write"); err != nil {
		return 0, err
	}
	p, err := f.codec.encode(s)
	if err != nil {
		return 0, f.fail("write", err)
	}
	n, err := f.write(p)
	if n < len(p) {
		return 0, err
	}
	return utf8.RuneCountInString(s), err
}

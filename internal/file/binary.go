package file

// BinaryFile is a handle that reads and writes raw bytes.
type BinaryFile struct {
	stream
}

// Read returns up to n bytes from the cursor. n < 0 reads to the end of the
// file. At end of file it returns an empty slice and no error.
func (f *BinaryFile) Read(n int) ([]byte, error) {
	if err := f.checkReadable("read"); err != nil {
		return nil, err
	}
	p, err := f.peek(n)
	if err != nil {
		return nil, err
	}
	out := append([]byte{}, p...)
	f.consume(len(p))
	return out, nil
}

// ReadLine returns bytes up to and including the next '\n', or to the end of
// the file. n >= 0 caps the result at n bytes.
func (f *BinaryFile) ReadLine(n int) ([]byte, error) {
	if err := f.checkReadable("readline"); err != nil {
		return nil, err
	}
	p, err := f.peekLine(n)
	if err != nil {
		return nil, err
	}
	out := append([]byte{}, p...)
	f.consume(len(p))
	return out, nil
}

// ReadAllLines returns the remaining lines with their terminators.
func (f *BinaryFile) ReadAllLines() ([][]byte, error) {
	var lines [][]byte
	for {
		line, err := f.ReadLine(-1)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// Write writes p at the cursor, or at the end of the file in append mode, and
// returns the number of bytes written.
func (f *BinaryFile) Write(p []byte) (int, error) {
	if err := f.checkWritable("write"); err != nil {
		return 0, err
	}
	return f.write(p)
}

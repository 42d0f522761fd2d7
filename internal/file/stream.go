package file

import (
	"errors"
	"io"

	"github.com/go-git/go-billy/v5"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/Cyclone1070/fio/internal/errutil"
)

// stream is the byte-level state shared by text and binary handles.
//
// The cursor pos is the logical offset seen by callers. At most one of rbuf and
// wbuf is non-empty at a time:
//   - with read-ahead, the backing file offset is pos+len(rbuf);
//   - with pending writes, the backing file offset is pos-len(wbuf);
//   - otherwise it is pos.
type stream struct {
	name     string
	file     billy.File
	mode     Mode
	pos      int64
	rbuf     []byte
	wbuf     []byte
	eof      bool
	closed   bool
	seekable bool
	bufSize  int
	chunk    int
	log      log.FieldLogger
}

// Name returns the path the handle was opened with.
func (s *stream) Name() string { return s.name }

// Mode returns the mode the handle was opened with.
func (s *stream) Mode() Mode { return s.mode }

// Closed reports whether Close has been called.
func (s *stream) Closed() bool { return s.closed }

// Seekable reports whether the handle supports Seek.
func (s *stream) Seekable() bool { return s.seekable }

func (s *stream) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	e := errutil.Classify(op, s.name, err)
	if e.Path == "" {
		e.Op, e.Path = op, s.name
	}
	return e
}

func (s *stream) checkOpen(op string) error {
	if s.closed {
		return errutil.OpError(errutil.ClosedHandle, op, s.name, nil)
	}
	return nil
}

func (s *stream) checkReadable(op string) error {
	if err := s.checkOpen(op); err != nil {
		return err
	}
	if !s.mode.Readable() {
		return errutil.OpError(errutil.NotReadable, op, s.name, nil)
	}
	return nil
}

func (s *stream) checkWritable(op string) error {
	if err := s.checkOpen(op); err != nil {
		return err
	}
	if !s.mode.Writable() {
		return errutil.OpError(errutil.NotWritable, op, s.name, nil)
	}
	return nil
}

// peek returns up to n buffered bytes at the cursor, reading ahead as needed.
// Fewer than n bytes means the stream is exhausted. n < 0 reads to the end.
func (s *stream) peek(n int) ([]byte, error) {
	if err := s.flush(); err != nil {
		return nil, err
	}
	for (n < 0 || len(s.rbuf) < n) && !s.eof {
		if err := s.fill(); err != nil {
			return nil, err
		}
	}
	if n < 0 || n > len(s.rbuf) {
		return s.rbuf, nil
	}
	return s.rbuf[:n], nil
}

// peekLine returns buffered bytes up to and including the next '\n', capped at
// limit bytes when limit >= 0.
func (s *stream) peekLine(limit int) ([]byte, error) {
	if err := s.flush(); err != nil {
		return nil, err
	}
	scanned := 0
	for {
		for ; scanned < len(s.rbuf); scanned++ {
			if limit >= 0 && scanned >= limit {
				return s.rbuf[:limit], nil
			}
			if s.rbuf[scanned] == '\n' {
				return s.rbuf[:scanned+1], nil
			}
		}
		if s.eof {
			if limit >= 0 && limit < len(s.rbuf) {
				return s.rbuf[:limit], nil
			}
			return s.rbuf, nil
		}
		if err := s.fill(); err != nil {
			return nil, err
		}
	}
}

// consume advances the cursor over n bytes previously returned by peek.
func (s *stream) consume(n int) {
	s.rbuf = s.rbuf[n:]
	s.pos += int64(n)
	if len(s.rbuf) == 0 {
		s.rbuf = nil
	}
}

func (s *stream) fill() error {
	chunk := make([]byte, s.chunk)
	n, err := s.file.Read(chunk)
	s.rbuf = append(s.rbuf, chunk[:n]...)
	if errors.Is(err, io.EOF) || (err == nil && n == 0) {
		s.eof = true
		return nil
	}
	return s.fail("read", err)
}

// dropReadAhead discards read-ahead so the backing offset matches the cursor.
func (s *stream) dropReadAhead() error {
	if len(s.rbuf) == 0 {
		s.eof = false
		return nil
	}
	s.rbuf = nil
	s.eof = false
	if !s.seekable {
		return nil
	}
	if _, err := s.file.Seek(s.pos, io.SeekStart); err != nil {
		return s.fail("seek", err)
	}
	return nil
}

// write buffers p at the cursor and returns len(p) once the bytes are
// buffered, even if the flush that follows fails.
func (s *stream) write(p []byte) (int, error) {
	if err := s.dropReadAhead(); err != nil {
		return 0, err
	}
	if s.mode.Access == Append && len(s.wbuf) == 0 && s.seekable {
		end, err := s.file.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, s.fail("seek", err)
		}
		s.pos = end
	}
	s.wbuf = append(s.wbuf, p...)
	s.pos += int64(len(p))
	if len(s.wbuf) >= s.bufSize {
		return len(p), s.flush()
	}
	return len(p), nil
}

// flush writes pending bytes. Bytes the backing file did not accept stay
// buffered.
func (s *stream) flush() error {
	if len(s.wbuf) == 0 {
		return nil
	}
	n, err := s.file.Write(s.wbuf)
	s.wbuf = s.wbuf[n:]
	if err != nil {
		return s.fail("write", err)
	}
	if len(s.wbuf) > 0 {
		return errutil.OpError(errutil.IO, "write", s.name, io.ErrShortWrite)
	}
	s.wbuf = nil
	return nil
}

// Tell returns the cursor as a byte offset, counting buffered writes.
func (s *stream) Tell() (int64, error) {
	if err := s.checkOpen("tell"); err != nil {
		return 0, err
	}
	return s.pos, nil
}

// Flush pushes buffered writes to the backing file.
func (s *stream) Flush() error {
	if err := s.checkOpen("flush"); err != nil {
		return err
	}
	return s.flush()
}

// Seek moves the cursor. whence is io.SeekStart, io.SeekCurrent or io.SeekEnd.
// The target must lie within [0, length].
func (s *stream) Seek(offset int64, whence int) (int64, error) {
	if err := s.checkOpen("seek"); err != nil {
		return 0, err
	}
	if !s.seekable {
		return 0, errutil.OpError(errutil.NotSeekable, "seek", s.name, nil)
	}
	if whence != io.SeekStart && whence != io.SeekCurrent && whence != io.SeekEnd {
		return 0, errutil.Newf(errutil.InvalidArgument, "invalid whence %d", whence)
	}
	if err := s.flush(); err != nil {
		return 0, err
	}
	size, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, s.fail("seek", err)
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		target = size + offset
	}

	restore := s.pos + int64(len(s.rbuf))
	if target < 0 || target > size {
		if _, err := s.file.Seek(restore, io.SeekStart); err != nil {
			return 0, s.fail("seek", err)
		}
		return 0, errutil.Newf(errutil.InvalidArgument, "seek target %d outside [0, %d]", target, size)
	}
	if _, err := s.file.Seek(target, io.SeekStart); err != nil {
		return 0, s.fail("seek", err)
	}
	s.rbuf = nil
	s.eof = false
	s.pos = target
	return target, nil
}

// Truncate resizes the file. The cursor is clamped to the new length.
func (s *stream) Truncate(size int64) error {
	if err := s.checkWritable("truncate"); err != nil {
		return err
	}
	if size < 0 {
		return errutil.Newf(errutil.InvalidArgument, "negative size %d", size)
	}
	if err := s.flush(); err != nil {
		return err
	}
	if err := s.dropReadAhead(); err != nil {
		return err
	}
	if err := s.file.Truncate(size); err != nil {
		return s.fail("truncate", err)
	}
	if s.pos > size {
		s.pos = size
		if s.seekable {
			if _, err := s.file.Seek(size, io.SeekStart); err != nil {
				return s.fail("seek", err)
			}
		}
	}
	return nil
}

type syncer interface {
	Sync() error
}

// Sync flushes and commits the file to stable storage when the backend supports it.
func (s *stream) Sync() error {
	if err := s.checkOpen("sync"); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	if f, ok := s.file.(syncer); ok {
		return s.fail("sync", f.Sync())
	}
	return nil
}

// Close flushes and releases the handle. Calling Close again is a no-op.
// A flush failure does not prevent the release; both errors are returned.
func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := multierr.Append(s.flush(), s.fail("close", s.file.Close()))
	s.rbuf, s.wbuf = nil, nil
	if err != nil {
		s.log.WithError(err).WithField("path", s.name).Debug("close failed")
		return err
	}
	s.log.WithField("path", s.name).Debug("closed handle")
	return nil
}

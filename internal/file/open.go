// Package file implements buffered file handles over an fsutil namespace.
//
// A handle is opened in text or binary mode. Text handles decode and encode
// through an explicit encoding and count characters; binary handles move raw
// bytes. Both keep a byte cursor, buffer writes, and release their file exactly
// once. Failures are classified errutil errors.
package file

import (
	"io"
	"io/fs"
	"os"

	"github.com/go-git/go-billy/v5"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/Cyclone1070/fio/internal/config"
	"github.com/Cyclone1070/fio/internal/errutil"
)

// opener is the filesystem surface handles need.
type opener interface {
	OpenFile(name string, flag int, perm os.FileMode) (billy.File, error)
	Stat(name string) (os.FileInfo, error)
}

// Handle is the behaviour shared by text and binary handles.
type Handle interface {
	Name() string
	Mode() Mode
	Closed() bool
	Seekable() bool
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
	Flush() error
	Sync() error
	Truncate(size int64) error
	Close() error
}

var (
	_ Handle = (*TextFile)(nil)
	_ Handle = (*BinaryFile)(nil)
)

type options struct {
	log       log.FieldLogger
	bufSize   int
	chunkSize int
	perm      os.FileMode
}

// Option configures how a handle is opened.
type Option func(*options)

// WithLogger sets the logger handle events are reported to.
func WithLogger(l log.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithBufferSize sets how many bytes are buffered before a write reaches the file.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufSize = n
		}
	}
}

// WithReadChunk sets how many bytes each read-ahead requests.
func WithReadChunk(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithPerm sets the permission bits of files the handle creates.
func WithPerm(perm os.FileMode) Option {
	return func(o *options) { o.perm = perm }
}

// WithConfig applies the io section of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		WithBufferSize(cfg.IO.BufferSize)(o)
		WithReadChunk(cfg.IO.ReadChunkSize)(o)
		o.perm = cfg.IO.FileMode()
	}
}

func newOptions(opts []Option) *options {
	defaults := config.DefaultConfig()
	o := &options{log: log.StandardLogger()}
	WithConfig(defaults)(o)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open opens path with a mode string such as "r", "w+b" or "x". Text modes
// require an encoding and binary modes reject one; both violations are
// InvalidArgument errors.
func Open(fsys opener, path, mode, encoding string, opts ...Option) (Handle, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if m.Binary {
		if encoding != "" {
			return nil, badOpen(path, "binary mode does not take an encoding")
		}
		f, err := OpenBinary(fsys, path, m, opts...)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	f, err := OpenText(fsys, path, m, encoding, opts...)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func badOpen(path, message string) error {
	return &errutil.Error{Kind: errutil.InvalidArgument, Op: "open", Path: path, Message: message}
}

// OpenText opens path for text I/O in the given encoding.
func OpenText(fsys opener, path string, mode Mode, encoding string, opts ...Option) (*TextFile, error) {
	if mode.Binary {
		return nil, badOpen(path, "text handles cannot use a binary mode")
	}
	if encoding == "" {
		return nil, badOpen(path, "text mode requires an encoding")
	}
	c, err := newCodec(encoding)
	if err != nil {
		e := errutil.AsError(err)
		e.Op, e.Path = "open", path
		return nil, e
	}
	s, err := openStream(fsys, path, mode, newOptions(opts))
	if err != nil {
		return nil, err
	}
	return &TextFile{stream: *s, codec: c}, nil
}

// OpenBinary opens path for byte I/O. The mode is treated as binary.
func OpenBinary(fsys opener, path string, mode Mode, opts ...Option) (*BinaryFile, error) {
	mode.Binary = true
	s, err := openStream(fsys, path, mode, newOptions(opts))
	if err != nil {
		return nil, err
	}
	return &BinaryFile{stream: *s}, nil
}

func openStream(fsys opener, path string, mode Mode, o *options) (*stream, error) {
	if mode.Access < Read || mode.Access > Create {
		return nil, errutil.Newf(errutil.InvalidArgument, "invalid access %d", mode.Access)
	}

	f, err := fsys.OpenFile(path, mode.flags(), o.perm)
	if err != nil {
		return nil, errutil.Classify("open", path, err)
	}

	seekable := true
	if info, err := fsys.Stat(path); err == nil {
		seekable = info.Mode()&(fs.ModeNamedPipe|fs.ModeSocket|fs.ModeCharDevice) == 0
	}

	s := &stream{
		name:     path,
		file:     f,
		mode:     mode,
		seekable: seekable,
		bufSize:  o.bufSize,
		chunk:    o.chunkSize,
		log:      o.log,
	}
	if mode.Access == Append && seekable {
		end, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			_ = f.Close()
			return nil, errutil.Classify("seek", path, err)
		}
		s.pos = end
	}
	o.log.WithFields(log.Fields{"path": path, "mode": mode.String()}).Debug("opened handle")
	return s, nil
}

// WithText opens a text handle, runs fn, and closes the handle however fn
// returns, including by panic. A close failure is returned alongside fn's error.
func WithText(fsys opener, path string, mode Mode, encoding string, fn func(*TextFile) error, opts ...Option) (err error) {
	f, err := OpenText(fsys, path, mode, encoding, opts...)
	if err != nil {
		return err
	}
	defer release(f, f.log, &err)
	return fn(f)
}

// WithBinary is WithText for binary handles.
func WithBinary(fsys opener, path string, mode Mode, fn func(*BinaryFile) error, opts ...Option) (err error) {
	f, err := OpenBinary(fsys, path, mode, opts...)
	if err != nil {
		return err
	}
	defer release(f, f.log, &err)
	return fn(f)
}

func release(h Handle, logger log.FieldLogger, err *error) {
	cerr := h.Close()
	if cerr == nil {
		return
	}
	logger.WithError(cerr).WithField("path", h.Name()).Warn("release failed")
	*err = multierr.Append(*err, cerr)
}

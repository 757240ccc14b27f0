package wav

import (
	"fmt"
	"io"
	"os"
)

// Stream is the byte-addressable backing store of a wav file. *os.File
// implements it; any seekable in-memory stream works as well.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
}

type syncer interface {
	Sync() error
}

// File is a handle on a RIFF/WAVE file. It owns the chunk model and a
// scratch buffer for transcoding; it is not safe for concurrent use.
type File struct {
	s     Stream
	path  string
	mode  string
	chunk masterChunk
	alloc Allocator
	tmp   []byte
	err   error

	// ownsStream is set when Open created the underlying *os.File.
	ownsStream bool
	atEOF      bool
}

// Option configures a File at open time.
type Option func(*File)

// WithAllocator installs a custom scratch buffer allocator.
func WithAllocator(a Allocator) Option {
	return func(f *File) {
		if a != nil {
			f.alloc = a
		}
	}
}

// canonicalMode resolves a C-style fopen mode string to its canonical
// form, or fails with a mode error.
func canonicalMode(mode string) (string, error) {
	switch mode {
	case "r", "rb":
		return "rb", nil
	case "r+", "rb+", "r+b":
		return "rb+", nil
	case "w", "wb":
		return "wb", nil
	case "w+", "wb+", "w+b":
		return "wb+", nil
	case "wx", "wbx":
		return "wbx", nil
	case "w+x", "wb+x", "w+bx":
		return "wb+x", nil
	case "a", "ab":
		return "ab", nil
	case "a+", "ab+", "a+b":
		return "ab+", nil
	default:
		return "", fmt.Errorf("%w: unrecognized mode %q", ErrMode, mode)
	}
}

func openFlags(canonical string) int {
	switch canonical {
	case "rb":
		return os.O_RDONLY
	case "rb+":
		return os.O_RDWR
	case "wb":
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "wb+":
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case "wbx":
		return os.O_WRONLY | os.O_CREATE | os.O_EXCL
	case "wb+x":
		return os.O_RDWR | os.O_CREATE | os.O_EXCL
	default: // ab, ab+: appending needs to read the existing header
		return os.O_RDWR | os.O_CREATE
	}
}

// Open opens the wav file at path with a C-style mode string.
// Read modes parse and validate the header. Write modes truncate and
// write a fresh 16-bit stereo 44100 Hz PCM header. Append modes try to
// parse an existing header and fall back to the fresh-write path when
// the file is missing, empty, or not a parsable wav file.
func Open(path, mode string, opts ...Option) (*File, error) {
	canonical, err := canonicalMode(mode)
	if err != nil {
		return nil, err
	}

	fp, err := os.OpenFile(path, openFlags(canonical), 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrOS, path, err)
	}

	f := &File{
		s:          fp,
		path:       path,
		mode:       canonical,
		alloc:      heapAllocator{},
		ownsStream: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	if err := f.init(); err != nil {
		fp.Close()
		return nil, err
	}

	return f, nil
}

// OpenStream wraps an already-open stream. The stream must be positioned
// at offset 0; for write modes it should be empty or truncated by the
// caller since streams carry no truncation primitive.
func OpenStream(s Stream, mode string, opts ...Option) (*File, error) {
	canonical, err := canonicalMode(mode)
	if err != nil {
		return nil, err
	}

	f := &File{
		s:     s,
		mode:  canonical,
		alloc: heapAllocator{},
	}

	for _, opt := range opts {
		opt(f)
	}

	if err := f.init(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) init() error {
	if f.mode[0] == 'r' {
		if err := f.parseHeader(); err != nil {
			return f.fail(err)
		}

		f.err = nil

		return nil
	}

	if f.mode[0] == 'a' {
		if err := f.parseHeader(); err == nil {
			// Existing valid wav file, keep writing into it. The cursor
			// sits at the first payload byte; seek to the end before
			// appending frames.
			f.err = nil

			return nil
		}

		if _, err := f.s.Seek(0, io.SeekStart); err != nil {
			return f.fail(fmt.Errorf("%w: rewind before fresh init: %v", ErrOS, err))
		}
	}

	f.chunk = defaultMasterChunk()

	if err := f.writeHeader(); err != nil {
		return f.fail(err)
	}

	f.err = nil

	return nil
}

// Close finalizes and closes the handle. If the recorded data size is
// odd and the cursor sits at the end of the payload, a single zero pad
// byte is appended first; the recorded size is left odd.
func (f *File) Close() error {
	err := f.finalize()

	if f.tmp != nil {
		f.alloc.Free(f.tmp)
		f.tmp = nil
	}

	f.s = nil

	return err
}

func (f *File) finalize() error {
	if f.s == nil {
		return nil
	}

	var firstErr error

	if f.mode[0] != 'r' && f.chunk.data.Size%2 != 0 && f.EOF() {
		if n, err := f.s.Write([]byte{0}); err != nil || n != 1 {
			firstErr = fmt.Errorf("%w: write pad byte: %v", ErrOS, err)
		}
	}

	if firstErr == nil {
		if s, ok := f.s.(syncer); ok {
			if err := s.Sync(); err != nil {
				firstErr = fmt.Errorf("%w: sync: %v", ErrOS, err)
			}
		}
	}

	// An owned descriptor is released even when the pad write or sync
	// failed.
	if f.ownsStream {
		if c, ok := f.s.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("%w: close: %v", ErrOS, err)
			}
		}
	}

	if firstErr != nil {
		return f.fail(firstErr)
	}

	f.err = nil

	return nil
}

// Reopen finalizes the current file and reopens the handle on path with
// the given mode, keeping the configured allocator.
func (f *File) Reopen(path, mode string) error {
	if err := f.finalize(); err != nil {
		f.s = nil
		return err
	}

	f.s = nil
	f.atEOF = false

	canonical, err := canonicalMode(mode)
	if err != nil {
		return f.fail(err)
	}

	fp, err := os.OpenFile(path, openFlags(canonical), 0o644)
	if err != nil {
		return f.fail(fmt.Errorf("%w: open %s: %v", ErrOS, path, err))
	}

	f.s = fp
	f.path = path
	f.mode = canonical
	f.ownsStream = true
	f.chunk = masterChunk{}

	if err := f.init(); err != nil {
		fp.Close()
		f.s = nil

		return err
	}

	return nil
}

// Flush forces buffered stream state to stable storage when the stream
// supports it.
func (f *File) Flush() error {
	if f.s == nil {
		return f.fail(ErrClosed)
	}

	if s, ok := f.s.(syncer); ok {
		if err := s.Sync(); err != nil {
			return f.fail(fmt.Errorf("%w: sync: %v", ErrOS, err))
		}
	}

	f.err = nil

	return nil
}

// Err returns the status recorded by the most recent operation, nil
// when it succeeded.
func (f *File) Err() error {
	if f == nil {
		return nil
	}

	return f.err
}

// Path returns the filename the handle was opened with, empty for
// stream-backed handles.
func (f *File) Path() string {
	return f.path
}

// Mode returns the canonical open mode string.
func (f *File) Mode() string {
	return f.mode
}

func (f *File) fail(err error) error {
	f.err = err
	return err
}

func (f *File) readAllowed() bool {
	switch f.mode {
	case "wb", "wbx", "ab":
		return false
	}

	return true
}

func (f *File) writeAllowed() bool {
	return f.mode != "rb"
}

package wav

import (
	"fmt"
	"io"
	"time"
)

// Length returns the number of sample frames recorded in the data chunk.
func (f *File) Length() int64 {
	if f == nil || f.chunk.fmt.BlockAlign == 0 {
		return 0
	}

	return int64(f.chunk.data.Size) / int64(f.chunk.fmt.BlockAlign)
}

// Tell returns the current position as a frame index into the data
// chunk.
func (f *File) Tell() (int64, error) {
	if f.s == nil {
		return 0, f.fail(ErrClosed)
	}

	pos, err := f.s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, f.fail(fmt.Errorf("%w: tell: %v", ErrOS, err))
	}

	headerSize := f.chunk.headerSize()
	if pos < headerSize {
		// The cursor never legally sits inside the header.
		return 0, f.fail(fmt.Errorf("%w: position %d inside %d byte header", ErrFormat, pos, headerSize))
	}

	f.err = nil

	return (pos - headerSize) / int64(f.chunk.fmt.BlockAlign), nil
}

// Seek repositions the cursor to a frame offset resolved against whence
// (io.SeekStart, io.SeekCurrent or io.SeekEnd). A resolved offset
// outside [0, Length()] fails with a parameter error and does not move
// the stream.
func (f *File) Seek(offset int64, whence int) error {
	if f.s == nil {
		return f.fail(ErrClosed)
	}

	length := f.Length()

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		cur, err := f.Tell()
		if err != nil {
			return err
		}

		offset += cur
	case io.SeekEnd:
		offset += length
	default:
		return f.fail(fmt.Errorf("%w: bad seek whence %d", ErrParam, whence))
	}

	if offset < 0 || offset > length {
		return f.fail(fmt.Errorf("%w: frame offset %d outside [0, %d]", ErrParam, offset, length))
	}

	target := f.chunk.headerSize() + offset*int64(f.chunk.fmt.BlockAlign)
	if _, err := f.s.Seek(target, io.SeekStart); err != nil {
		return f.fail(fmt.Errorf("%w: seek: %v", ErrOS, err))
	}

	f.atEOF = false
	f.err = nil

	return nil
}

// Rewind seeks back to the first frame.
func (f *File) Rewind() error {
	return f.Seek(0, io.SeekStart)
}

// EOF reports whether the cursor sits at the end of the recorded
// payload. The check is against the recorded data size, not the
// physical stream end, so a trailing pad byte does not count.
func (f *File) EOF() bool {
	if f == nil || f.s == nil {
		return true
	}

	if f.atEOF {
		return true
	}

	pos, err := f.s.Seek(0, io.SeekCurrent)
	if err != nil {
		return true
	}

	return pos == f.chunk.headerSize()+int64(f.chunk.data.Size)
}

// Duration returns the play time of the recorded frames.
func (f *File) Duration() time.Duration {
	if f == nil {
		return 0
	}

	return time.Duration(f.Length()) * sampleDuration(int(f.chunk.fmt.SampleRate))
}

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
)

// Read transfers up to frames sample frames from the data chunk into
// per-channel buffers, de-interleaving as it goes. buffers must be a
// [][]uint8, [][]int16 or [][]int32 whose element width matches the
// in-memory container for the current on-disk sample width (1->1 byte,
// 2->2 bytes, 3 and 4 -> 4 bytes); 24-bit samples are sign-extended
// into their int32 containers. The count is clamped to the frames
// remaining before the end of the data chunk, so a smaller-than-asked
// return with a nil error simply means the end was reached.
func (f *File) Read(buffers any, frames int) (int, error) {
	if f.s == nil {
		return 0, f.fail(ErrClosed)
	}

	if !f.readAllowed() {
		return 0, f.fail(fmt.Errorf("%w: read in mode %q", ErrMode, f.mode))
	}

	nch, sampleSize, cont, err := f.transcodeLayout()
	if err != nil {
		return 0, f.fail(err)
	}

	cur, err := f.Tell()
	if err != nil {
		return 0, err
	}

	if remain := f.Length() - cur; int64(frames) > remain {
		frames = int(remain)
	}

	if frames <= 0 {
		f.err = nil
		return 0, nil
	}

	if err := checkBuffers(buffers, nch, cont, frames); err != nil {
		return 0, f.fail(err)
	}

	need := nch * frames * sampleSize
	if err := f.growScratch(need); err != nil {
		return 0, f.fail(err)
	}

	if _, err := io.ReadFull(f.s, f.tmp[:need]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			f.atEOF = true
		}

		return 0, f.fail(fmt.Errorf("%w: short sample read: %v", ErrOS, err))
	}

	f.deinterleave(buffers, nch, sampleSize, frames)
	f.err = nil

	return frames, nil
}

// Write transfers frames sample frames from per-channel buffers into
// the data chunk, interleaving and truncating each container down to
// the on-disk sample width. The header is rewritten in place afterwards
// and the cursor restored, so successive writes append seamlessly.
func (f *File) Write(buffers any, frames int) (int, error) {
	if f.s == nil {
		return 0, f.fail(ErrClosed)
	}

	if !f.writeAllowed() {
		return 0, f.fail(fmt.Errorf("%w: write in mode %q", ErrMode, f.mode))
	}

	nch, sampleSize, cont, err := f.transcodeLayout()
	if err != nil {
		return 0, f.fail(err)
	}

	if frames <= 0 {
		f.err = nil
		return 0, nil
	}

	if err := checkBuffers(buffers, nch, cont, frames); err != nil {
		return 0, f.fail(err)
	}

	need := nch * frames * sampleSize
	if err := f.growScratch(need); err != nil {
		return 0, f.fail(err)
	}

	f.interleave(buffers, nch, sampleSize, frames)

	if err := writeAll(f.s, f.tmp[:need]); err != nil {
		return 0, f.fail(fmt.Errorf("failed to write samples: %w", err))
	}

	f.chunk.data.Size += uint32(need)
	if f.chunk.hasFact {
		f.chunk.fact.SampleLength += uint32(frames)
	}

	savePos, err := f.s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, f.fail(fmt.Errorf("%w: tell before header rewrite: %v", ErrOS, err))
	}

	if err := f.writeHeader(); err != nil {
		return 0, f.fail(err)
	}

	if _, err := f.s.Seek(savePos, io.SeekStart); err != nil {
		return 0, f.fail(fmt.Errorf("%w: restore position: %v", ErrOS, err))
	}

	f.err = nil

	return frames, nil
}

// transcodeLayout resolves the channel count, on-disk sample width and
// container width, rejecting formats sample I/O cannot serve.
func (f *File) transcodeLayout() (nch, sampleSize, cont int, err error) {
	if f.chunk.fmt.FormatTag == FormatExtensible {
		return 0, 0, 0, fmt.Errorf("%w: no sample i/o for the extensible format tag", ErrFormat)
	}

	nch = int(f.chunk.fmt.NumChannels)
	if nch < 1 || f.chunk.fmt.BlockAlign == 0 {
		return 0, 0, 0, fmt.Errorf("%w: bad channel layout (%d channels, block align %d)",
			ErrFormat, nch, f.chunk.fmt.BlockAlign)
	}

	sampleSize = int(f.chunk.fmt.BlockAlign) / nch

	cont = containerSize(sampleSize)
	if cont == 0 {
		return 0, 0, 0, fmt.Errorf("%w: unsupported sample width %d bytes", ErrFormat, sampleSize)
	}

	return nch, sampleSize, cont, nil
}

func checkBuffers(buffers any, nch, cont, frames int) error {
	var width, count int

	switch b := buffers.(type) {
	case [][]uint8:
		width, count = 1, len(b)

		for i := range b {
			if len(b[i]) < frames {
				return fmt.Errorf("%w: channel %d buffer holds %d of %d frames", ErrParam, i, len(b[i]), frames)
			}
		}
	case [][]int16:
		width, count = 2, len(b)

		for i := range b {
			if len(b[i]) < frames {
				return fmt.Errorf("%w: channel %d buffer holds %d of %d frames", ErrParam, i, len(b[i]), frames)
			}
		}
	case [][]int32:
		width, count = 4, len(b)

		for i := range b {
			if len(b[i]) < frames {
				return fmt.Errorf("%w: channel %d buffer holds %d of %d frames", ErrParam, i, len(b[i]), frames)
			}
		}
	default:
		return fmt.Errorf("%w: unsupported buffer type %T", ErrParam, buffers)
	}

	if count != nch {
		return fmt.Errorf("%w: %d channel buffers for %d channels", ErrParam, count, nch)
	}

	if width != cont {
		return fmt.Errorf("%w: %d byte containers, format needs %d", ErrParam, width, cont)
	}

	return nil
}

func (f *File) deinterleave(buffers any, nch, sampleSize, frames int) {
	switch dst := buffers.(type) {
	case [][]uint8:
		for i := 0; i < nch; i++ {
			for j := 0; j < frames; j++ {
				dst[i][j] = f.tmp[j*nch+i]
			}
		}
	case [][]int16:
		for i := 0; i < nch; i++ {
			for j := 0; j < frames; j++ {
				off := (j*nch + i) * 2
				dst[i][j] = int16(binary.LittleEndian.Uint16(f.tmp[off : off+2]))
			}
		}
	case [][]int32:
		for i := 0; i < nch; i++ {
			for j := 0; j < frames; j++ {
				off := (j*nch + i) * sampleSize
				if sampleSize == 3 {
					// sign extension into the 4th container byte
					dst[i][j] = audio.Int24LETo32(f.tmp[off : off+3])
				} else {
					dst[i][j] = int32(binary.LittleEndian.Uint32(f.tmp[off : off+4]))
				}
			}
		}
	}
}

func (f *File) interleave(buffers any, nch, sampleSize, frames int) {
	switch src := buffers.(type) {
	case [][]uint8:
		for i := 0; i < nch; i++ {
			for j := 0; j < frames; j++ {
				f.tmp[j*nch+i] = src[i][j]
			}
		}
	case [][]int16:
		for i := 0; i < nch; i++ {
			for j := 0; j < frames; j++ {
				off := (j*nch + i) * 2
				binary.LittleEndian.PutUint16(f.tmp[off:off+2], uint16(src[i][j]))
			}
		}
	case [][]int32:
		for i := 0; i < nch; i++ {
			for j := 0; j < frames; j++ {
				off := (j*nch + i) * sampleSize
				if sampleSize == 3 {
					// high container byte is dropped unchecked
					copy(f.tmp[off:off+3], audio.Int32toInt24LEBytes(src[i][j]))
				} else {
					binary.LittleEndian.PutUint32(f.tmp[off:off+4], uint32(src[i][j]))
				}
			}
		}
	}
}

func (f *File) growScratch(n int) error {
	if f.tmp != nil && len(f.tmp) >= n {
		return nil
	}

	var buf []byte
	if f.tmp == nil {
		buf = f.alloc.Alloc(n)
	} else {
		buf = f.alloc.Realloc(f.tmp, n)
	}

	if len(buf) < n {
		f.tmp = nil
		return fmt.Errorf("%w: %d bytes", ErrNoMem, n)
	}

	f.tmp = buf

	return nil
}

package wav

import (
	"encoding/binary"
	"fmt"

	"github.com/go-audio/audio"
)

// Mutators validate and recompute every dependent field on a scratch
// copy of the fmt chunk before anything is adopted, so a rejected
// transition never leaves the model half updated. Each successful
// mutation rewrites the header in place; the cursor then sits at the
// first payload byte, which matches the intended call pattern of
// configuring the format before writing samples.

func (f *File) mutable() error {
	if f.s == nil {
		return ErrClosed
	}

	if f.mode[0] == 'r' {
		return fmt.Errorf("%w: format mutation in mode %q", ErrMode, f.mode)
	}

	return nil
}

func (f *File) adopt(fc *FmtChunk) error {
	f.chunk.fmt = *fc

	if err := f.writeHeader(); err != nil {
		return f.fail(err)
	}

	f.err = nil

	return nil
}

// SetFormatTag switches the format tag and reshapes the fmt chunk
// layout: PCM uses the 16-byte layout, the extensible tag the 40-byte
// layout with a full 22-byte extension, every other tag the 18-byte
// layout with a zero extension size. A-law and mu-law force 8 bits per
// sample; IEEE float forces a 4- or 8-byte block alignment and caps the
// bit depth at the container width.
func (f *File) SetFormatTag(tag uint16) error {
	if err := f.mutable(); err != nil {
		return f.fail(err)
	}

	fc := f.chunk.fmt.Clone()
	fc.FormatTag = tag

	switch tag {
	case FormatPCM:
		fc.Size = fmtChunkSizeStd
		fc.ExtSize = 0
		fc.Extensible = nil
	case FormatExtensible:
		fc.Size = fmtChunkSizeExtensible
		fc.ExtSize = fmtExtensionSize

		if fc.Extensible == nil {
			fc.Extensible = &FmtExtensible{
				ValidBitsPerSample: fc.BitsPerSample,
				SubFormat:          makeSubFormatGUID(FormatPCM),
			}
		}
	default:
		fc.Size = fmtChunkSizeWithExt
		fc.ExtSize = 0
		fc.Extensible = nil
	}

	switch tag {
	case FormatALaw, FormatMuLaw:
		fc.BitsPerSample = 8
	case FormatIEEEFloat:
		if fc.BlockAlign != 4 && fc.BlockAlign != 8 {
			fc.BlockAlign = 4
		}

		if fc.BitsPerSample > 8*fc.BlockAlign {
			fc.BitsPerSample = 8 * fc.BlockAlign
		}
	}

	return f.adopt(fc)
}

// SetNumChannels changes the channel count and recomputes the average
// byte rate. Counts below 1 fail with a parameter error.
func (f *File) SetNumChannels(n uint16) error {
	if err := f.mutable(); err != nil {
		return f.fail(err)
	}

	if n < 1 {
		return f.fail(fmt.Errorf("%w: channel count %d", ErrParam, n))
	}

	fc := f.chunk.fmt.Clone()
	fc.NumChannels = n
	fc.AvgBytesPerSec = uint32(fc.BlockAlign) * fc.SampleRate

	return f.adopt(fc)
}

// SetSampleRate changes the sample rate and recomputes the average byte
// rate.
func (f *File) SetSampleRate(rate uint32) error {
	if err := f.mutable(); err != nil {
		return f.fail(err)
	}

	fc := f.chunk.fmt.Clone()
	fc.SampleRate = rate
	fc.AvgBytesPerSec = uint32(fc.BlockAlign) * fc.SampleRate

	return f.adopt(fc)
}

// SetValidBitsPerSample changes the effective bit depth. bits must lie
// in [1, 8*sample_size]; A-law and mu-law accept exactly 8. For the
// extensible tag the fmt bit depth stays at the container width and the
// request lands in the extension's valid-bits field; for every other
// tag it overwrites the fmt bit depth directly.
func (f *File) SetValidBitsPerSample(bits uint16) error {
	if err := f.mutable(); err != nil {
		return f.fail(err)
	}

	fc := f.chunk.fmt.Clone()

	// uint16 arithmetic would wrap for block aligns of 8192 and up
	containerBits := 8 * int(fc.BlockAlign) / int(fc.NumChannels)
	if int(bits) < 1 || int(bits) > containerBits {
		return f.fail(fmt.Errorf("%w: %d valid bits outside [1, %d]", ErrParam, bits, containerBits))
	}

	if (fc.FormatTag == FormatALaw || fc.FormatTag == FormatMuLaw) && bits != 8 {
		return f.fail(fmt.Errorf("%w: %d valid bits for a log-PCM tag", ErrParam, bits))
	}

	if fc.FormatTag != FormatExtensible {
		fc.BitsPerSample = bits
	} else {
		fc.BitsPerSample = uint16(containerBits)

		if fc.Extensible == nil {
			fc.Extensible = &FmtExtensible{SubFormat: makeSubFormatGUID(FormatPCM)}
		}

		fc.Extensible.ValidBitsPerSample = bits
	}

	return f.adopt(fc)
}

// SetSampleSize changes the per-channel on-disk sample width in bytes
// (1 to 4) and recomputes block alignment, byte rate and bit depth.
func (f *File) SetSampleSize(size int) error {
	if err := f.mutable(); err != nil {
		return f.fail(err)
	}

	if containerSize(size) == 0 {
		return f.fail(fmt.Errorf("%w: sample size %d bytes", ErrParam, size))
	}

	fc := f.chunk.fmt.Clone()
	fc.BlockAlign = uint16(size) * fc.NumChannels
	fc.AvgBytesPerSec = uint32(fc.BlockAlign) * fc.SampleRate
	fc.BitsPerSample = uint16(size) * 8

	if fc.FormatTag == FormatExtensible && fc.Extensible != nil {
		fc.Extensible.ValidBitsPerSample = uint16(size) * 8
	}

	return f.adopt(fc)
}

// SetChannelMask assigns the speaker position mask. Only legal for the
// extensible format tag.
func (f *File) SetChannelMask(mask uint32) error {
	if err := f.mutable(); err != nil {
		return f.fail(err)
	}

	if f.chunk.fmt.FormatTag != FormatExtensible {
		return f.fail(fmt.Errorf("%w: channel mask on format tag %#04x", ErrFormat, f.chunk.fmt.FormatTag))
	}

	fc := f.chunk.fmt.Clone()
	if fc.Extensible == nil {
		fc.Extensible = &FmtExtensible{SubFormat: makeSubFormatGUID(FormatPCM)}
	}

	fc.Extensible.ChannelMask = mask

	return f.adopt(fc)
}

// SetSubFormat stores tag in the low 16 bits of the extension's
// sub-format identifier. Only legal for the extensible format tag.
func (f *File) SetSubFormat(tag uint16) error {
	if err := f.mutable(); err != nil {
		return f.fail(err)
	}

	if f.chunk.fmt.FormatTag != FormatExtensible {
		return f.fail(fmt.Errorf("%w: sub-format on format tag %#04x", ErrFormat, f.chunk.fmt.FormatTag))
	}

	fc := f.chunk.fmt.Clone()
	if fc.Extensible == nil {
		fc.Extensible = &FmtExtensible{SubFormat: makeSubFormatGUID(tag)}
	}

	binary.LittleEndian.PutUint16(fc.Extensible.SubFormat[:2], tag)

	return f.adopt(fc)
}

// FormatTag returns the fmt chunk's format tag.
func (f *File) FormatTag() uint16 {
	return f.chunk.fmt.FormatTag
}

// NumChannels returns the channel count.
func (f *File) NumChannels() uint16 {
	return f.chunk.fmt.NumChannels
}

// SampleRate returns the sample rate in Hz.
func (f *File) SampleRate() uint32 {
	return f.chunk.fmt.SampleRate
}

// BitsPerSample returns the fmt chunk's raw bit depth field.
func (f *File) BitsPerSample() uint16 {
	return f.chunk.fmt.BitsPerSample
}

// ValidBitsPerSample returns the effective bit depth: the extension's
// valid-bits field for extensible files, the fmt bit depth otherwise.
func (f *File) ValidBitsPerSample() uint16 {
	if f.chunk.fmt.FormatTag == FormatExtensible && f.chunk.fmt.Extensible != nil {
		return f.chunk.fmt.Extensible.ValidBitsPerSample
	}

	return f.chunk.fmt.BitsPerSample
}

// SampleSize returns the on-disk bytes per sample per channel.
func (f *File) SampleSize() int {
	if f.chunk.fmt.NumChannels == 0 {
		return 0
	}

	return int(f.chunk.fmt.BlockAlign) / int(f.chunk.fmt.NumChannels)
}

// ChannelMask returns the extension's speaker mask, zero when absent.
func (f *File) ChannelMask() uint32 {
	if f.chunk.fmt.Extensible == nil {
		return 0
	}

	return f.chunk.fmt.Extensible.ChannelMask
}

// SubFormat returns the low 16 bits of the sub-format identifier, zero
// when no extension is present.
func (f *File) SubFormat() uint16 {
	if f.chunk.fmt.Extensible == nil {
		return 0
	}

	return binary.LittleEndian.Uint16(f.chunk.fmt.Extensible.SubFormat[:2])
}

// SubFormatGUID returns the full 16-byte sub-format identifier.
func (f *File) SubFormatGUID() [16]byte {
	if f.chunk.fmt.Extensible == nil {
		return [16]byte{}
	}

	return f.chunk.fmt.Extensible.SubFormat
}

// SampleLength returns the fact chunk's frame count and whether a fact
// chunk is present at all.
func (f *File) SampleLength() (uint32, bool) {
	if !f.chunk.hasFact {
		return 0, false
	}

	return f.chunk.fact.SampleLength, true
}

// FormatChunk returns a copy of the current fmt chunk.
func (f *File) FormatChunk() *FmtChunk {
	if f == nil {
		return nil
	}

	return f.chunk.fmt.Clone()
}

// Format returns the audio format of the handle's content.
func (f *File) Format() *audio.Format {
	if f == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(f.chunk.fmt.NumChannels),
		SampleRate:  int(f.chunk.fmt.SampleRate),
	}
}

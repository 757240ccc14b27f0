package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// parseHeader reads and validates the RIFF/WAVE/fmt/[fact]/data chunk
// sequence from a stream positioned at offset 0. It is strict about the
// chunk order: nothing but an optional fact chunk may sit between the
// fmt and data chunks. On success the cursor is at the first payload
// byte and the chunk model mirrors the on-disk header.
func (f *File) parseHeader() error {
	if _, err := f.s.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to header: %v", ErrOS, err)
	}

	var hdr [12]byte
	if _, err := io.ReadFull(f.s, hdr[:]); err != nil {
		return fmt.Errorf("%w: short RIFF header read: %v", ErrFormat, err)
	}

	if !bytes.Equal(hdr[:4], riff.RiffID[:]) {
		return fmt.Errorf("%w: bad RIFF id %q", ErrFormat, hdr[:4])
	}

	if !bytes.Equal(hdr[8:12], riff.WavFormatID[:]) {
		return fmt.Errorf("%w: bad WAVE form id %q", ErrFormat, hdr[8:12])
	}

	chunk := masterChunk{riffSize: binary.LittleEndian.Uint32(hdr[4:8])}

	if err := readFmtChunk(f.s, &chunk.fmt); err != nil {
		return err
	}

	var ch [8]byte
	if _, err := io.ReadFull(f.s, ch[:]); err != nil {
		return fmt.Errorf("%w: short chunk header read after fmt: %v", ErrFormat, err)
	}

	switch {
	case bytes.Equal(ch[:4], CIDFact[:]):
		if err := readFactChunk(f.s, binary.LittleEndian.Uint32(ch[4:8]), &chunk.fact); err != nil {
			return err
		}

		chunk.hasFact = true

		if _, err := io.ReadFull(f.s, ch[:]); err != nil {
			return fmt.Errorf("%w: short data chunk header read: %v", ErrFormat, err)
		}

		if !bytes.Equal(ch[:4], riff.DataFormatID[:]) {
			return fmt.Errorf("%w: expected data chunk after fact, got %q", ErrFormat, ch[:4])
		}

		chunk.data.Size = binary.LittleEndian.Uint32(ch[4:8])
	case bytes.Equal(ch[:4], riff.DataFormatID[:]):
		// No fact chunk in this file.
		chunk.data.Size = binary.LittleEndian.Uint32(ch[4:8])
	default:
		return fmt.Errorf("%w: expected fact or data chunk, got %q", ErrFormat, ch[:4])
	}

	f.chunk = chunk
	f.atEOF = false

	return nil
}

func readFmtChunk(s Stream, fc *FmtChunk) error {
	var hdr [8]byte
	if _, err := io.ReadFull(s, hdr[:]); err != nil {
		return fmt.Errorf("%w: short fmt chunk header read: %v", ErrFormat, err)
	}

	if !bytes.Equal(hdr[:4], riff.FmtID[:]) {
		return fmt.Errorf("%w: bad fmt chunk id %q", ErrFormat, hdr[:4])
	}

	size := binary.LittleEndian.Uint32(hdr[4:8])
	if size < fmtChunkSizeStd || size > fmtChunkSizeExtensible {
		return fmt.Errorf("%w: fmt chunk size %d out of range", ErrFormat, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(s, body); err != nil {
		return fmt.Errorf("%w: short fmt chunk body read: %v", ErrFormat, err)
	}

	fc.Size = size
	fc.FormatTag = binary.LittleEndian.Uint16(body[0:2])
	fc.NumChannels = binary.LittleEndian.Uint16(body[2:4])
	fc.SampleRate = binary.LittleEndian.Uint32(body[4:8])
	fc.AvgBytesPerSec = binary.LittleEndian.Uint32(body[8:12])
	fc.BlockAlign = binary.LittleEndian.Uint16(body[12:14])
	fc.BitsPerSample = binary.LittleEndian.Uint16(body[14:16])

	switch fc.FormatTag {
	case FormatPCM, FormatIEEEFloat, FormatALaw, FormatMuLaw, FormatExtensible:
	default:
		return fmt.Errorf("%w: format tag %#04x", ErrFormat, fc.FormatTag)
	}

	// Position math and the valid-bits bound divide by these.
	if fc.NumChannels < 1 || fc.BlockAlign < 1 {
		return fmt.Errorf("%w: channel count %d with block align %d", ErrFormat, fc.NumChannels, fc.BlockAlign)
	}

	decoded := fmtChunkSizeStd
	if size >= fmtChunkSizeWithExt {
		fc.ExtSize = binary.LittleEndian.Uint16(body[16:18])
		decoded = fmtChunkSizeWithExt
	}

	if size >= fmtChunkSizeExtensible {
		ext := &FmtExtensible{
			ValidBitsPerSample: binary.LittleEndian.Uint16(body[18:20]),
			ChannelMask:        binary.LittleEndian.Uint32(body[20:24]),
		}
		copy(ext.SubFormat[:], body[24:40])
		fc.Extensible = ext
		decoded = fmtChunkSizeExtensible
	}

	fc.extra = append([]byte(nil), body[decoded:]...)

	return nil
}

func readFactChunk(s Stream, size uint32, fc *FactChunk) error {
	if size < factChunkSize {
		return fmt.Errorf("%w: fact chunk size %d too small", ErrFormat, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(s, body); err != nil {
		return fmt.Errorf("%w: short fact chunk body read: %v", ErrFormat, err)
	}

	fc.Size = size
	fc.SampleLength = binary.LittleEndian.Uint32(body[:4])
	fc.extra = append([]byte(nil), body[4:]...)

	return nil
}

// writeHeader recomputes the RIFF total size, seeks to offset 0 and
// serializes the full header. Each chunk is one fixed-size write; a
// short write fails with an OS error and leaves exactly the bytes
// written so far. The cursor ends at the first payload byte; callers
// needing the previous position must save and restore it themselves.
func (f *File) writeHeader() error {
	c := &f.chunk

	riffSize := uint32(4) +
		riffHeaderSize + c.fmt.Size +
		riffHeaderSize + c.data.Size

	if c.hasFact {
		riffSize += riffHeaderSize + c.fact.Size
	}

	// RIFF chunks must span an even byte count; the pad byte is counted
	// in the RIFF size but never in the data size.
	if riffSize%2 != 0 {
		riffSize++
	}

	c.riffSize = riffSize

	if _, err := f.s.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to header: %v", ErrOS, err)
	}

	hdr := make([]byte, 12)
	copy(hdr[:4], riff.RiffID[:])
	binary.LittleEndian.PutUint32(hdr[4:8], riffSize)
	copy(hdr[8:12], riff.WavFormatID[:])

	if err := writeAll(f.s, hdr); err != nil {
		return fmt.Errorf("failed to write RIFF header: %w", err)
	}

	if err := writeAll(f.s, encodeFmtChunk(&c.fmt)); err != nil {
		return fmt.Errorf("failed to write fmt chunk: %w", err)
	}

	if c.hasFact {
		if err := writeAll(f.s, encodeFactChunk(&c.fact)); err != nil {
			return fmt.Errorf("failed to write fact chunk: %w", err)
		}
	}

	dataHdr := make([]byte, riffHeaderSize)
	copy(dataHdr[:4], riff.DataFormatID[:])
	binary.LittleEndian.PutUint32(dataHdr[4:8], c.data.Size)

	if err := writeAll(f.s, dataHdr); err != nil {
		return fmt.Errorf("failed to write data chunk header: %w", err)
	}

	return nil
}

func encodeFmtChunk(fc *FmtChunk) []byte {
	out := make([]byte, riffHeaderSize+int(fc.Size))
	copy(out[:4], riff.FmtID[:])
	binary.LittleEndian.PutUint32(out[4:8], fc.Size)

	body := out[riffHeaderSize:]
	binary.LittleEndian.PutUint16(body[0:2], fc.FormatTag)
	binary.LittleEndian.PutUint16(body[2:4], fc.NumChannels)
	binary.LittleEndian.PutUint32(body[4:8], fc.SampleRate)
	binary.LittleEndian.PutUint32(body[8:12], fc.AvgBytesPerSec)
	binary.LittleEndian.PutUint16(body[12:14], fc.BlockAlign)
	binary.LittleEndian.PutUint16(body[14:16], fc.BitsPerSample)

	encoded := fmtChunkSizeStd
	if fc.Size >= fmtChunkSizeWithExt {
		binary.LittleEndian.PutUint16(body[16:18], fc.ExtSize)
		encoded = fmtChunkSizeWithExt
	}

	if fc.Size >= fmtChunkSizeExtensible {
		ext := fc.Extensible
		if ext == nil {
			ext = &FmtExtensible{}
		}

		binary.LittleEndian.PutUint16(body[18:20], ext.ValidBitsPerSample)
		binary.LittleEndian.PutUint32(body[20:24], ext.ChannelMask)
		copy(body[24:40], ext.SubFormat[:])
		encoded = fmtChunkSizeExtensible
	}

	copy(body[encoded:], fc.extra)

	return out
}

func encodeFactChunk(fc *FactChunk) []byte {
	out := make([]byte, riffHeaderSize+int(fc.Size))
	copy(out[:4], CIDFact[:])
	binary.LittleEndian.PutUint32(out[4:8], fc.Size)
	binary.LittleEndian.PutUint32(out[8:12], fc.SampleLength)
	copy(out[12:], fc.extra)

	return out
}

func writeAll(s Stream, b []byte) error {
	n, err := s.Write(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOS, err)
	}

	if n != len(b) {
		return fmt.Errorf("%w: short write (%d/%d bytes)", ErrOS, n, len(b))
	}

	return nil
}

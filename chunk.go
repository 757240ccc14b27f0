package wav

import "encoding/binary"

const (
	ksSubFormatGUIDTail0  = 0x00
	ksSubFormatGUIDTail1  = 0x00
	ksSubFormatGUIDTail2  = 0x10
	ksSubFormatGUIDTail3  = 0x00
	ksSubFormatGUIDTail4  = 0x80
	ksSubFormatGUIDTail5  = 0x00
	ksSubFormatGUIDTail6  = 0x00
	ksSubFormatGUIDTail7  = 0xAA
	ksSubFormatGUIDTail8  = 0x00
	ksSubFormatGUIDTail9  = 0x38
	ksSubFormatGUIDTail10 = 0x9B
	ksSubFormatGUIDTail11 = 0x71
)

const riffHeaderSize = 8

// Declared fmt chunk sizes for the three wire layouts.
const (
	fmtChunkSizeStd        = 16
	fmtChunkSizeWithExt    = 18
	fmtChunkSizeExtensible = 40

	fmtExtensionSize = 22
	factChunkSize    = 4
)

// CIDFact is the chunk ID for the fact chunk.
var CIDFact = [4]byte{'f', 'a', 'c', 't'}

// FmtChunk stores the WAV fmt chunk, including extensible metadata.
// Size selects the wire layout: 16 for the basic fields, 18 when a bare
// extension size is present, 40 for WAVE_FORMAT_EXTENSIBLE.
type FmtChunk struct {
	Size           uint32
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	ExtSize        uint16
	Extensible     *FmtExtensible

	// extra preserves declared fmt body bytes beyond the decoded layout
	// so a nonstandard header round-trips byte for byte.
	extra []byte
}

// FmtExtensible stores WAVE_FORMAT_EXTENSIBLE extra fields.
type FmtExtensible struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
}

// FactChunk stores the optional fact chunk payload.
type FactChunk struct {
	Size         uint32
	SampleLength uint32

	extra []byte
}

// DataChunk tracks the sample payload size in bytes.
type DataChunk struct {
	Size uint32
}

// masterChunk mirrors the on-disk RIFF/WAVE/fmt/fact/data sequence.
// Fact presence is an explicit flag; the wire encoding is unchanged.
type masterChunk struct {
	riffSize uint32
	fmt      FmtChunk
	hasFact  bool
	fact     FactChunk
	data     DataChunk
}

// headerSize returns the byte offset of the first sample payload byte.
func (c *masterChunk) headerSize() int64 {
	size := int64(riffHeaderSize) + 4 +
		int64(riffHeaderSize) + int64(c.fmt.Size) +
		int64(riffHeaderSize)

	if c.hasFact {
		size += int64(riffHeaderSize) + int64(c.fact.Size)
	}

	return size
}

// defaultMasterChunk is the chunk model used when creating a fresh file:
// 16-bit stereo PCM at 44100 Hz.
func defaultMasterChunk() masterChunk {
	return masterChunk{
		fmt: FmtChunk{
			Size:           fmtChunkSizeStd,
			FormatTag:      FormatPCM,
			NumChannels:    2,
			SampleRate:     44100,
			AvgBytesPerSec: 44100 * 2 * 2,
			BlockAlign:     4,
			BitsPerSample:  16,
		},
	}
}

func (f *FmtChunk) Clone() *FmtChunk {
	if f == nil {
		return nil
	}

	out := *f
	out.extra = append([]byte(nil), f.extra...)

	if f.Extensible != nil {
		ext := *f.Extensible
		out.Extensible = &ext
	}

	return &out
}

// EffectiveFormatTag resolves the extensible sub-format down to the base
// format tag it carries in its low 16 bits.
func (f *FmtChunk) EffectiveFormatTag() uint16 {
	if f == nil {
		return 0
	}

	if f.FormatTag == FormatExtensible && f.Extensible != nil {
		return binary.LittleEndian.Uint16(f.Extensible.SubFormat[:2])
	}

	return f.FormatTag
}

func makeSubFormatGUID(formatTag uint16) [16]byte {
	var guid [16]byte
	binary.LittleEndian.PutUint32(guid[:4], uint32(formatTag))
	guid[4] = ksSubFormatGUIDTail0
	guid[5] = ksSubFormatGUIDTail1
	guid[6] = ksSubFormatGUIDTail2
	guid[7] = ksSubFormatGUIDTail3
	guid[8] = ksSubFormatGUIDTail4
	guid[9] = ksSubFormatGUIDTail5
	guid[10] = ksSubFormatGUIDTail6
	guid[11] = ksSubFormatGUIDTail7
	guid[12] = ksSubFormatGUIDTail8
	guid[13] = ksSubFormatGUIDTail9
	guid[14] = ksSubFormatGUIDTail10
	guid[15] = ksSubFormatGUIDTail11

	return guid
}

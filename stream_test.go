package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// memStream is a seekable in-memory Stream for tests.
type memStream struct {
	data []byte
	pos  int64
}

func (m *memStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}

	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)

	return n, nil
}

func (m *memStream) Write(p []byte) (int, error) {
	if end := m.pos + int64(len(p)); end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}

	n := copy(m.data[m.pos:], p)
	m.pos += int64(n)

	return n, nil
}

func (m *memStream) Seek(offset int64, whence int) (int64, error) {
	var base int64

	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = int64(len(m.data))
	default:
		return 0, errors.New("bad whence")
	}

	if base+offset < 0 {
		return 0, errors.New("negative position")
	}

	m.pos = base + offset

	return m.pos, nil
}

// headerSpec drives buildWavBytes.
type headerSpec struct {
	formatTag   uint16
	numChannels uint16
	sampleRate  uint32
	blockAlign  uint16
	bits        uint16
	fmtSize     uint32

	withFact   bool
	factFrames uint32

	payload []byte
}

// buildWavBytes serializes a syntactically valid wav file for parser
// tests.
func buildWavBytes(t *testing.T, spec headerSpec) []byte {
	t.Helper()

	if spec.fmtSize == 0 {
		spec.fmtSize = fmtChunkSizeStd
	}

	var buf bytes.Buffer

	body := make([]byte, spec.fmtSize)
	binary.LittleEndian.PutUint16(body[0:2], spec.formatTag)
	binary.LittleEndian.PutUint16(body[2:4], spec.numChannels)
	binary.LittleEndian.PutUint32(body[4:8], spec.sampleRate)
	binary.LittleEndian.PutUint32(body[8:12], uint32(spec.blockAlign)*spec.sampleRate)
	binary.LittleEndian.PutUint16(body[12:14], spec.blockAlign)
	binary.LittleEndian.PutUint16(body[14:16], spec.bits)

	if spec.fmtSize >= fmtChunkSizeExtensible {
		binary.LittleEndian.PutUint16(body[16:18], fmtExtensionSize)
		binary.LittleEndian.PutUint16(body[18:20], spec.bits)
		binary.LittleEndian.PutUint32(body[20:24], 0x3)

		guid := makeSubFormatGUID(FormatPCM)
		copy(body[24:40], guid[:])
	}

	riffSize := 4 + riffHeaderSize + spec.fmtSize + riffHeaderSize + uint32(len(spec.payload))
	if spec.withFact {
		riffSize += riffHeaderSize + factChunkSize
	}

	if riffSize%2 != 0 {
		riffSize++
	}

	buf.WriteString("RIFF")
	le32(&buf, riffSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	le32(&buf, spec.fmtSize)
	buf.Write(body)

	if spec.withFact {
		buf.WriteString("fact")
		le32(&buf, factChunkSize)
		le32(&buf, spec.factFrames)
	}

	buf.WriteString("data")
	le32(&buf, uint32(len(spec.payload)))
	buf.Write(spec.payload)

	if len(spec.payload)%2 != 0 {
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

func le32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func monoPCMSpec(payload []byte) headerSpec {
	return headerSpec{
		formatTag:   FormatPCM,
		numChannels: 1,
		sampleRate:  8000,
		blockAlign:  1,
		bits:        8,
		payload:     payload,
	}
}

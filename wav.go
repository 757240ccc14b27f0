package wav

import (
	"errors"
	"math"
	"time"
)

// WAV format tags recognized by this package. Extensible files can be
// opened and inspected but carry no sample I/O support.
const (
	FormatPCM        uint16 = 0x0001
	FormatIEEEFloat  uint16 = 0x0003
	FormatALaw       uint16 = 0x0006
	FormatMuLaw      uint16 = 0x0007
	FormatExtensible uint16 = 0xFFFE
)

var (
	// ErrFormat is returned for malformed or unsupported chunk structures
	// and format tags.
	ErrFormat = errors.New("bad or unsupported wav format")
	// ErrMode is returned when an operation is not permitted under the
	// handle's open mode.
	ErrMode = errors.New("operation not permitted in this mode")
	// ErrParam is returned for out-of-range arguments.
	ErrParam = errors.New("parameter out of range")
	// ErrNoMem is returned when the scratch buffer cannot be allocated.
	ErrNoMem = errors.New("scratch buffer allocation failed")
	// ErrOS is returned when the underlying stream fails.
	ErrOS = errors.New("stream i/o failure")
	// ErrClosed is returned when the handle has no open stream.
	ErrClosed = errors.New("wav file is closed")
)

// containerSizes maps the on-disk sample width in bytes to the in-memory
// container width. Index 0 and widths above 4 are unsupported.
var containerSizes = [5]int{0, 1, 2, 4, 4}

func containerSize(sampleSize int) int {
	if sampleSize < 1 || sampleSize >= len(containerSizes) {
		return 0
	}

	return containerSizes[sampleSize]
}

func sampleDuration(sampleRate int) time.Duration {
	if sampleRate == 0 {
		return 0
	}

	return time.Second / time.Duration(math.Abs(float64(sampleRate)))
}

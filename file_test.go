package wav

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalMode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"r", "rb"}, {"rb", "rb"},
		{"r+", "rb+"}, {"rb+", "rb+"}, {"r+b", "rb+"},
		{"w", "wb"}, {"wb", "wb"},
		{"w+", "wb+"}, {"wb+", "wb+"}, {"w+b", "wb+"},
		{"wx", "wbx"}, {"wbx", "wbx"},
		{"w+x", "wb+x"}, {"wb+x", "wb+x"}, {"w+bx", "wb+x"},
		{"a", "ab"}, {"ab", "ab"},
		{"a+", "ab+"}, {"ab+", "ab+"}, {"a+b", "ab+"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := canonicalMode(tt.in)
			if err != nil {
				t.Fatalf("canonicalMode(%q) failed: %v", tt.in, err)
			}

			if got != tt.want {
				t.Fatalf("canonicalMode(%q)=%q, want %q", tt.in, got, tt.want)
			}
		})
	}

	for _, in := range []string{"", "z", "rw", "x", "br", "a+x"} {
		t.Run("invalid "+in, func(t *testing.T) {
			if _, err := canonicalMode(in); !errors.Is(err, ErrMode) {
				t.Fatalf("canonicalMode(%q) err=%v, want ErrMode", in, err)
			}
		})
	}
}

func TestOpenWriteDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.wav")

	f, err := Open(path, "w")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if f.NumChannels() != 2 || f.SampleRate() != 44100 || f.BitsPerSample() != 16 {
		t.Fatalf("unexpected defaults: %d channels, %d Hz, %d bits",
			f.NumChannels(), f.SampleRate(), f.BitsPerSample())
	}

	if f.FormatTag() != FormatPCM {
		t.Fatalf("format tag=%#04x, want PCM", f.FormatTag())
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	if fi.Size() != 44 {
		t.Fatalf("fresh file size=%d, want 44", fi.Size())
	}
}

func TestOpenReadMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.wav"), "r")
	if !errors.Is(err, ErrOS) {
		t.Fatalf("err=%v, want ErrOS", err)
	}
}

func TestOpenExclusiveCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclusive.wav")

	f, err := Open(path, "wx")
	if err != nil {
		t.Fatalf("exclusive create failed: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := Open(path, "wx"); !errors.Is(err, ErrOS) {
		t.Fatalf("second exclusive create err=%v, want ErrOS", err)
	}
}

func TestAppendToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.wav")

	f, err := Open(path, "w")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	first := [][]int16{{1, 2, 3}, {4, 5, 6}}
	if _, err := f.Write(first, 3); err != nil {
		t.Fatalf("initial write failed: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err = Open(path, "a+")
	if err != nil {
		t.Fatalf("append open failed: %v", err)
	}

	if got := f.Length(); got != 3 {
		t.Fatalf("length after append open=%d, want 3", got)
	}

	if err := f.Seek(0, io.SeekEnd); err != nil {
		t.Fatalf("seek to end failed: %v", err)
	}

	second := [][]int16{{7, 8}, {9, 10}}
	if _, err := f.Write(second, 2); err != nil {
		t.Fatalf("append write failed: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err = Open(path, "r")
	if err != nil {
		t.Fatalf("reopen for read failed: %v", err)
	}
	defer f.Close()

	if got := f.Length(); got != 5 {
		t.Fatalf("length=%d, want 5", got)
	}

	got := [][]int16{make([]int16, 5), make([]int16, 5)}
	if _, err := f.Read(got, 5); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	want := [][]int16{{1, 2, 3, 7, 8}, {4, 5, 6, 9, 10}}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("channel %d frame %d=%d, want %d", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestAppendFallbackOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.wav")

	if err := os.WriteFile(path, []byte("certainly not a wav file"), 0o644); err != nil {
		t.Fatalf("seed file failed: %v", err)
	}

	f, err := Open(path, "a")
	if err != nil {
		t.Fatalf("append open of corrupt file failed: %v", err)
	}

	if f.NumChannels() != 2 || f.SampleRate() != 44100 {
		t.Fatalf("fallback did not install defaults: %d channels, %d Hz",
			f.NumChannels(), f.SampleRate())
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err = Open(path, "r")
	if err != nil {
		t.Fatalf("fallback produced an unparsable file: %v", err)
	}
	f.Close()
}

func TestAppendCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh-append.wav")

	f, err := Open(path, "ab+")
	if err != nil {
		t.Fatalf("append open failed: %v", err)
	}

	if got := f.Length(); got != 0 {
		t.Fatalf("fresh append length=%d, want 0", got)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestClosePadsOddDataSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.wav")

	f, err := Open(path, "w")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := f.SetNumChannels(1); err != nil {
		t.Fatalf("SetNumChannels failed: %v", err)
	}

	if err := f.SetSampleSize(1); err != nil {
		t.Fatalf("SetSampleSize failed: %v", err)
	}

	if _, err := f.Write([][]uint8{{9, 8, 7}}, 3); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	// 44 byte header, 3 payload bytes, 1 pad byte
	if fi.Size() != 48 {
		t.Fatalf("file size=%d, want 48", fi.Size())
	}

	f, err = Open(path, "r")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer f.Close()

	if got := f.Length(); got != 3 {
		t.Fatalf("length=%d, want 3 (pad byte must not count)", got)
	}

	if err := f.Seek(0, io.SeekEnd); err != nil {
		t.Fatalf("seek to end failed: %v", err)
	}

	if !f.EOF() {
		t.Fatal("EOF must be true at the un-padded length boundary")
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.wav")

	f, err := Open(path, "w")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := f.Write([][]int16{{5}, {6}}, 1); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := f.Reopen(path, "r"); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer f.Close()

	if f.Mode() != "rb" {
		t.Fatalf("mode=%q, want rb", f.Mode())
	}

	got := [][]int16{make([]int16, 1), make([]int16, 1)}
	if _, err := f.Read(got, 1); err != nil {
		t.Fatalf("read after reopen failed: %v", err)
	}

	if got[0][0] != 5 || got[1][0] != 6 {
		t.Fatalf("read %v, want [[5] [6]]", got)
	}
}

// syncFailStream fails Sync and records whether Close ran.
type syncFailStream struct {
	memStream
	closed bool
}

func (s *syncFailStream) Sync() error  { return errors.New("device gone") }
func (s *syncFailStream) Close() error { s.closed = true; return nil }

func TestCloseReleasesOwnedStreamAfterSyncFailure(t *testing.T) {
	st := &syncFailStream{}

	f, err := OpenStream(st, "wb")
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}

	f.ownsStream = true

	if err := f.Close(); !errors.Is(err, ErrOS) {
		t.Fatalf("close err=%v, want ErrOS", err)
	}

	if !st.closed {
		t.Fatal("owned stream must be released even when sync fails")
	}
}

func TestStickyErr(t *testing.T) {
	f, err := OpenStream(&memStream{data: buildWavBytes(t, monoPCMSpec([]byte{1, 2}))}, "rb")
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}

	if f.Err() != nil {
		t.Fatalf("fresh handle Err()=%v, want nil", f.Err())
	}

	if err := f.Seek(100, io.SeekStart); !errors.Is(err, ErrParam) {
		t.Fatalf("seek err=%v, want ErrParam", err)
	}

	if !errors.Is(f.Err(), ErrParam) {
		t.Fatalf("sticky Err()=%v, want ErrParam", f.Err())
	}

	if err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek failed: %v", err)
	}

	if f.Err() != nil {
		t.Fatalf("Err() after success=%v, want nil", f.Err())
	}
}

// The write-then-read scenario: defaults give a 44 byte header, 100
// sequential stereo int16 frames survive a close/reopen round trip.
func TestWriteReadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.wav")

	f, err := Open(path, "w")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if got := f.chunk.headerSize(); got != 44 {
		t.Fatalf("header size=%d, want 44", got)
	}

	const frames = 100

	src := [][]int16{make([]int16, frames), make([]int16, frames)}
	for j := 0; j < frames; j++ {
		src[0][j] = int16(j)
		src[1][j] = int16(-j)
	}

	n, err := f.Write(src, frames)
	if err != nil || n != frames {
		t.Fatalf("write=%d,%v, want %d,nil", n, err, frames)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err = Open(path, "r")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer f.Close()

	if got := f.Length(); got != frames {
		t.Fatalf("length=%d, want %d", got, frames)
	}

	dst := [][]int16{make([]int16, frames), make([]int16, frames)}

	n, err = f.Read(dst, frames)
	if err != nil || n != frames {
		t.Fatalf("read=%d,%v, want %d,nil", n, err, frames)
	}

	for j := 0; j < frames; j++ {
		if dst[0][j] != src[0][j] || dst[1][j] != src[1][j] {
			t.Fatalf("frame %d=(%d,%d), want (%d,%d)", j, dst[0][j], dst[1][j], src[0][j], src[1][j])
		}
	}
}

// This tool converts a PCM wav file into an aiff file stored next to
// the source.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cwbudde/wavfile"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("wavtoaiff", flag.ContinueOnError)

	path := flagSet.String("path", "", "The path to the wav file to convert to aiff")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("you must set the -path flag")
	}

	f, err := wav.Open(*path, "rb")
	if err != nil {
		return fmt.Errorf("invalid wav file %s: %w", *path, err)
	}
	defer f.Close()

	if f.FormatTag() != wav.FormatPCM {
		return fmt.Errorf("only PCM wav files can be converted, got format tag %#04x", f.FormatTag())
	}

	outPath := (*path)[:len(*path)-len(filepath.Ext(*path))] + ".aif"

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer outFile.Close()

	numChans := int(f.NumChannels())
	bitDepth := int(f.ValidBitsPerSample())

	enc := aiff.NewEncoder(outFile, int(f.SampleRate()), bitDepth, numChans)

	format := &audio.Format{
		NumChannels: numChans,
		SampleRate:  int(f.SampleRate()),
	}

	const chunkFrames = 4096

	for {
		data, err := readInterleaved(f, chunkFrames)
		if err != nil {
			return err
		}

		if len(data) == 0 {
			break
		}

		intBuf := &audio.IntBuffer{
			Format:         format,
			SourceBitDepth: bitDepth,
			Data:           data,
		}

		if err := enc.Write(intBuf); err != nil {
			return fmt.Errorf("failed to encode aiff frames: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize aiff file: %w", err)
	}

	fmt.Printf("Wav file converted to %s\n", outPath)

	return nil
}

// readInterleaved pulls up to frames frames from f and flattens the
// per-channel buffers back into interleaved ints for the aiff encoder.
func readInterleaved(f *wav.File, frames int) ([]int, error) {
	numChans := int(f.NumChannels())

	switch f.SampleSize() {
	case 1:
		bufs := make([][]uint8, numChans)
		for i := range bufs {
			bufs[i] = make([]uint8, frames)
		}

		n, err := f.Read(bufs, frames)
		if err != nil {
			return nil, err
		}

		out := make([]int, n*numChans)
		for j := 0; j < n; j++ {
			for i := 0; i < numChans; i++ {
				out[j*numChans+i] = int(bufs[i][j])
			}
		}

		return out, nil
	case 2:
		bufs := make([][]int16, numChans)
		for i := range bufs {
			bufs[i] = make([]int16, frames)
		}

		n, err := f.Read(bufs, frames)
		if err != nil {
			return nil, err
		}

		out := make([]int, n*numChans)
		for j := 0; j < n; j++ {
			for i := 0; i < numChans; i++ {
				out[j*numChans+i] = int(bufs[i][j])
			}
		}

		return out, nil
	case 3, 4:
		bufs := make([][]int32, numChans)
		for i := range bufs {
			bufs[i] = make([]int32, frames)
		}

		n, err := f.Read(bufs, frames)
		if err != nil {
			return nil, err
		}

		out := make([]int, n*numChans)
		for j := 0; j < n; j++ {
			for i := 0; i < numChans; i++ {
				out[j*numChans+i] = int(bufs[i][j])
			}
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unsupported sample size %d bytes", f.SampleSize())
	}
}

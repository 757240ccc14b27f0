// This tool prints the format metadata of the passed wav file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/wavfile"
)

const missingPathMessage = "You must pass the path of the file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func formatTagName(tag uint16) string {
	switch tag {
	case wav.FormatPCM:
		return "PCM"
	case wav.FormatIEEEFloat:
		return "IEEE float"
	case wav.FormatALaw:
		return "A-law"
	case wav.FormatMuLaw:
		return "mu-law"
	case wav.FormatExtensible:
		return "extensible"
	default:
		return fmt.Sprintf("unknown (%#06x)", tag)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingPath
	}

	f, err := wav.Open(args[0], "rb")
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(out, "Format: %s\n", formatTagName(f.FormatTag()))
	fmt.Fprintf(out, "Channels: %d\n", f.NumChannels())
	fmt.Fprintf(out, "SampleRate: %d Hz\n", f.SampleRate())
	fmt.Fprintf(out, "BitsPerSample: %d\n", f.ValidBitsPerSample())
	fmt.Fprintf(out, "SampleSize: %d bytes\n", f.SampleSize())
	fmt.Fprintf(out, "Frames: %d\n", f.Length())
	fmt.Fprintf(out, "Duration: %s\n", f.Duration())

	if samples, ok := f.SampleLength(); ok {
		fmt.Fprintf(out, "FactSampleLength: %d\n", samples)
	}

	if f.FormatTag() == wav.FormatExtensible {
		fmt.Fprintf(out, "ChannelMask: %#010x\n", f.ChannelMask())
		fmt.Fprintf(out, "SubFormat: %#06x\n", f.SubFormat())
	}

	return nil
}

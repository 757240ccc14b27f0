package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/cwbudde/wavfile"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-sine", flag.ContinueOnError)

	output := flagSet.String("output", "output.wav", "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of output file")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	log.Printf("generating a %f sec sine wav at %f hz", *length, *frequency)

	const sampleRate = 48000

	out, err := wav.Open(*output, "wb")
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}

	if err := out.SetNumChannels(1); err != nil {
		return err
	}

	// block alignment still reflects the stereo default
	if err := out.SetSampleSize(2); err != nil {
		return err
	}

	if err := out.SetSampleRate(sampleRate); err != nil {
		return err
	}

	numSamples := int(sampleRate * *length)
	buf := [][]int16{make([]int16, numSamples)}

	for i := 0; i < numSamples; i++ {
		fv := math.Sin(float64(i) / sampleRate * *frequency * 2 * math.Pi)
		buf[0][i] = int16(math.Round(fv * 32767))
	}

	if _, err := out.Write(buf, numSamples); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

package wav

import (
	"testing"
	"time"
)

func TestContainerSize(t *testing.T) {
	tests := []struct {
		name       string
		sampleSize int
		want       int
	}{
		{"one byte", 1, 1},
		{"two bytes", 2, 2},
		{"three bytes", 3, 4},
		{"four bytes", 4, 4},
		{"zero", 0, 0},
		{"negative", -1, 0},
		{"too wide", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := containerSize(tt.sampleSize)
			if got != tt.want {
				t.Fatalf("containerSize(%d)=%d, want %d", tt.sampleSize, got, tt.want)
			}
		})
	}
}

func TestSampleDuration(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		want       time.Duration
	}{
		{"44100Hz", 44100, time.Second / 44100},
		{"zero", 0, 0},
		{"negative", -48000, time.Second / 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sampleDuration(tt.sampleRate)
			if got != tt.want {
				t.Fatalf("sampleDuration(%d)=%v, want %v", tt.sampleRate, got, tt.want)
			}
		})
	}
}

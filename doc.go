// Package wav reads and writes RIFF/WAVE audio files with random
// access and in-place header maintenance, without holding the sample
// payload in memory.
//
// A File is opened with a C-style mode string (r/rb, r+, w/wb, wx, w+,
// a/ab, a+ and friends) and exposes:
//
//   - strict parsing and validation of the RIFF/WAVE/fmt/[fact]/data
//     chunk sequence,
//   - sample transcoding between the interleaved on-disk stream and
//     per-channel [][]uint8, [][]int16 or [][]int32 buffers, including
//     24-bit sign extension,
//   - frame-granular Seek/Tell/EOF and format mutators that keep block
//     alignment, byte rate and chunk sizes consistent and rewrite the
//     header in place.
//
// PCM, IEEE float, A-law and mu-law format tags are recognized; sample
// bytes move verbatim regardless of tag. The extensible tag is parsed
// for metadata only and carries no sample I/O.
package wav

// ABOUTME: Audio type definitions shared by decoders and outputs
// ABOUTME: Samples travel as int32 left-justified in a 24-bit range
package audio

import (
	"fmt"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes a PCM stream.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth)
}

// Valid reports whether the format can be played.
func (f Format) Valid() bool {
	return f.SampleRate > 0 && f.Channels > 0 && f.Channels <= 2
}

// Duration converts an interleaved sample count to wall time.
func (f Format) Duration(samples int64) time.Duration {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	frames := samples / int64(f.Channels)
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleFromDepth scales a signed sample of the given bit depth into the 24-bit range.
// 8-bit input is treated as unsigned, as stored in WAV files.
func SampleFromDepth(sample int, bitDepth int) int32 {
	switch bitDepth {
	case 8:
		return int32(sample-128) << 16
	case 16:
		return int32(sample) << 8
	case 24:
		return int32(sample)
	case 32:
		return int32(sample >> 8)
	default:
		if bitDepth > 24 {
			return int32(sample >> (bitDepth - 24))
		}
		return int32(sample) << (24 - bitDepth)
	}
}

// Clamp24 limits v to the 24-bit range.
func Clamp24(v int64) int32 {
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}

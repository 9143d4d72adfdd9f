// ABOUTME: Little-endian PCM packing for int32 samples
// ABOUTME: Used by the oto and malgo outputs to fill device buffers
package encode

import (
	"encoding/binary"

	"github.com/harperreed/nightchorus/pkg/audio"
)

// PCM16LE appends samples to dst as signed 16-bit little-endian PCM.
func PCM16LE(dst []byte, samples []int32) []byte {
	n := len(dst)
	dst = grow(dst, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[n+i*2:], uint16(audio.SampleToInt16(s)))
	}
	return dst
}

// PCM24LE appends samples to dst as packed signed 24-bit little-endian PCM.
func PCM24LE(dst []byte, samples []int32) []byte {
	n := len(dst)
	dst = grow(dst, len(samples)*3)
	for i, s := range samples {
		o := n + i*3
		dst[o] = byte(s)
		dst[o+1] = byte(s >> 8)
		dst[o+2] = byte(s >> 16)
	}
	return dst
}

func grow(dst []byte, extra int) []byte {
	n := len(dst)
	if cap(dst)-n < extra {
		next := make([]byte, n, n+extra)
		copy(next, dst)
		dst = next
	}
	return dst[:n+extra]
}

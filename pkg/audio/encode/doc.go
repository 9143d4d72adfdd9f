// ABOUTME: PCM byte encoding for audio output backends
// ABOUTME: Packs 24-bit justified int32 samples into device byte layouts
// Package encode converts the int32 sample convention used throughout
// pkg/audio into interleaved little-endian byte buffers.
//
// Example:
//
//	buf = encode.PCM16LE(buf[:0], samples)
package encode

// ABOUTME: Audio output package for playing PCM to a sound device
// ABOUTME: Provides the Output interface with oto and malgo backends
// Package output provides audio playback backends.
//
// Two backends are available: oto (default, 16-bit, pure Go on most
// platforms) and malgo (miniaudio via cgo). Both apply a software
// volume in the 0-100 range with clipping to the 24-bit sample range.
//
// Example:
//
//	out, err := output.New("oto", logger)
//	err = out.Open(48000, 2)
//	err = out.Write(samples)
package output

// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts streamed audio between sample rates chunk by chunk
// Package resample provides audio sample rate conversion.
//
// The Resampler keeps the last input frame between calls so a stream
// can be converted in arbitrary chunk sizes without clicks at the
// boundaries.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	out = r.Process(out[:0], chunk)
package resample

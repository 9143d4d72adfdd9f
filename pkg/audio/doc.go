// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and sample conversion functions
// Package audio provides the PCM types shared by the decode and output packages.
//
// Samples are carried as int32 values left-justified in a 24-bit range, so a 16-bit
// sample 0x7fff becomes 0x7fff00. Decoders scale into that range with SampleFromDepth
// and outputs scale back down for their device format.
//
// Example:
//
//	format := audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}
//	sample24 := audio.SampleFromInt16(sample16)
package audio

// ABOUTME: Audio decoding helpers for source loops and rendered files
// ABOUTME: Probes WAV, MP3, FLAC and Ogg Vorbis; streams WAV as int32 samples
// Package decode inspects species source loops and streams rendered PCM files.
//
// Probe reads only as much of a file as it needs to report its format and length,
// so it is cheap enough to run before every transcode. WAVStream decodes a PCM WAV
// file incrementally into int32 samples in the 24-bit range used by the output package.
//
// Example:
//
//	info, err := decode.Probe("data/audio/frogs_recording_1min.wav")
//	stream, err := decode.OpenWAV(rendered)
//	n, err := stream.Read(samples)
package decode

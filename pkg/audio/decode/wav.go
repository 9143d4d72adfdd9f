// ABOUTME: WAV probing and incremental PCM streaming
// ABOUTME: Wraps go-audio/wav and scales samples into the 24-bit range
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/harperreed/nightchorus/pkg/audio"
)

// ErrInvalidWAV is returned for files that are not PCM WAV.
var ErrInvalidWAV = errors.New("invalid WAV file")

const wavFormatPCM = 1

func probeWAV(f *os.File) (Info, error) {
	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Info{}, ErrInvalidWAV
	}

	if err := decoder.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("failed to locate PCM data: %w", err)
	}

	format := audio.Format{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
	}
	// The RIFF size includes header bytes, so derive duration from the data chunk.
	samples := decoder.PCMLen() / int64(format.BitDepth/8)

	return Info{
		Codec:    "pcm",
		Format:   format,
		Duration: format.Duration(samples),
	}, nil
}

// WAVStream decodes an integer PCM WAV file chunk by chunk.
type WAVStream struct {
	file    *os.File
	decoder *wav.Decoder
	format  audio.Format
	buf     *goaudio.IntBuffer
}

// OpenWAV opens path and positions the stream at the first PCM sample.
func OpenWAV(path string) (*WAVStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		f.Close()
		return nil, fmt.Errorf("%w: audio format %d is not integer PCM", ErrInvalidWAV, decoder.WavAudioFormat)
	}
	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to locate PCM data: %w", err)
	}

	return &WAVStream{
		file:    f,
		decoder: decoder,
		format: audio.Format{
			SampleRate: int(decoder.SampleRate),
			Channels:   int(decoder.NumChans),
			BitDepth:   int(decoder.BitDepth),
		},
		buf: &goaudio.IntBuffer{},
	}, nil
}

// Format returns the stream's PCM format.
func (s *WAVStream) Format() audio.Format { return s.format }

// Read fills dst with interleaved samples and returns io.EOF once the data chunk is exhausted.
func (s *WAVStream) Read(dst []int32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("failed to decode PCM: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		dst[i] = audio.SampleFromDepth(s.buf.Data[i], s.format.BitDepth)
	}
	return n, nil
}

// Rewind restarts the stream at the first PCM sample.
func (s *WAVStream) Rewind() error {
	return s.decoder.Rewind()
}

// Close releases the underlying file.
func (s *WAVStream) Close() error {
	return s.file.Close()
}

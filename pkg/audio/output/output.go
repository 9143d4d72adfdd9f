// ABOUTME: Audio output interface definition and backend factory
// ABOUTME: Common interface for audio playback backends plus software volume
package output

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/harperreed/nightchorus/pkg/audio"
)

// Backend names accepted by New.
const (
	BackendOto   = "oto"
	BackendMalgo = "malgo"
)

// ErrNotOpen is returned by Write before Open or after Close.
var ErrNotOpen = errors.New("output not initialized")

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs audio samples (blocks until written)
	Write(samples []int32) error

	// Close releases output resources. The output may be opened again.
	Close() error

	// SetVolume sets the software volume (0-100)
	SetVolume(volume int)
}

// New returns the output backend with the given name.
func New(backend string, logger *slog.Logger) (Output, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "output", "backend", backend)

	switch backend {
	case "", BackendOto:
		return NewOto(logger), nil
	case BackendMalgo:
		return NewMalgo(logger), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}

// applyVolume scales samples with clipping protection
func applyVolume(dst, samples []int32, volume int) []int32 {
	multiplier := getVolumeMultiplier(volume)

	dst = dst[:0]
	for _, sample := range samples {
		dst = append(dst, audio.Clamp24(int64(float64(sample)*multiplier)))
	}
	return dst
}

func getVolumeMultiplier(volume int) float64 {
	return float64(clampVolume(volume)) / 100.0
}

// ABOUTME: Probe entry point and shared decoder types
// ABOUTME: Dispatches on file extension to the per-codec probe functions
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/nightchorus/pkg/audio"
)

// ErrUnsupportedFormat is returned for extensions Probe cannot inspect.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Info describes a probed audio file.
type Info struct {
	Codec    string
	Format   audio.Format
	Duration time.Duration
}

type probeFunc func(f *os.File) (Info, error)

var probers = map[string]probeFunc{
	".wav":  probeWAV,
	".mp3":  probeMP3,
	".flac": probeFLAC,
	".ogg":  probeOgg,
	".oga":  probeOgg,
}

// Supported reports whether Probe understands the file's extension.
func Supported(path string) bool {
	_, ok := probers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Probe opens path and reports its codec, format and duration.
func Probe(path string) (Info, error) {
	ext := strings.ToLower(filepath.Ext(path))
	probe, ok := probers[ext]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q (supported: .wav, .mp3, .flac, .ogg)", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	info, err := probe(f)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", filepath.Base(path), err)
	}
	return info, nil
}

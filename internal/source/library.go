// ABOUTME: Species loop library mapping species names to source recordings
// ABOUTME: Checks files exist and caches probed format and duration per file version
package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/harperreed/nightchorus/pkg/audio/decode"
	"github.com/patrickmn/go-cache"
)

// probeTTL bounds how long a probe result is trusted for an unchanged file.
const probeTTL = 10 * time.Minute

// ErrMissingSource is returned when a species has no readable loop file.
var ErrMissingSource = errors.New("source loop not found")

// Loop is a resolved source recording.
type Loop struct {
	Species string
	Path    string
	Info    decode.Info
}

// Library resolves species to loop files.
type Library struct {
	pathFor     func(species string) string
	minDuration time.Duration
	logger      *slog.Logger
	probes      *cache.Cache
}

// NewLibrary builds a library. pathFor maps a species to its file;
// loops shorter than minDuration are accepted with a warning.
func NewLibrary(pathFor func(species string) string, minDuration time.Duration, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		pathFor:     pathFor,
		minDuration: minDuration,
		logger:      logger.With("component", "source"),
		// no janitor goroutine; expired entries are purged on lookup
		probes: cache.New(probeTTL, 0),
	}
}

// Resolve finds and probes the loop for species.
func (l *Library) Resolve(species string) (Loop, error) {
	path := l.pathFor(species)

	st, err := os.Stat(path)
	if err != nil {
		return Loop{}, fmt.Errorf("%w: %s for %q: %v", ErrMissingSource, path, species, err)
	}
	if st.IsDir() {
		return Loop{}, fmt.Errorf("%w: %s is a directory", ErrMissingSource, path)
	}

	key := fmt.Sprintf("%s@%d:%d", path, st.ModTime().UnixNano(), st.Size())
	if v, ok := l.probes.Get(key); ok {
		return Loop{Species: species, Path: path, Info: v.(decode.Info)}, nil
	}
	l.probes.DeleteExpired()

	info, err := decode.Probe(path)
	if err != nil {
		return Loop{}, fmt.Errorf("source %q: %w", species, err)
	}
	l.probes.Set(key, info, cache.DefaultExpiration)

	if info.Duration > 0 && info.Duration < l.minDuration {
		l.logger.Warn("source loop shorter than playback interval, output will be padded",
			"species", species, "path", path, "duration", info.Duration, "interval", l.minDuration)
	}
	l.logger.Debug("source probed", "species", species, "path", path,
		"codec", info.Codec, "format", info.Format.String(), "duration", info.Duration)

	return Loop{Species: species, Path: path, Info: info}, nil
}

// Path is Resolve reduced to the file path.
func (l *Library) Path(species string) (string, error) {
	loop, err := l.Resolve(species)
	if err != nil {
		return "", err
	}
	return loop.Path, nil
}

// Check resolves every species and returns the first failure.
func (l *Library) Check(species []string) error {
	for _, s := range species {
		if _, err := l.Resolve(s); err != nil {
			return err
		}
	}
	return nil
}

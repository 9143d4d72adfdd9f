// ABOUTME: Temperature and light sources consumed by the playback loop
// ABOUTME: Defines the Source interface and selects an implementation from config
package sensors

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/harperreed/nightchorus/internal/config"
)

// Source names accepted in sensors.source.
const (
	SourceSimulated = "simulated"
	SourceHardware  = "hardware"
	SourceMQTT      = "mqtt"
)

var (
	// ErrUnknownSource is returned by New for an unrecognised sensors.source.
	ErrUnknownSource = errors.New("unknown sensor source")

	// ErrNotFinite rejects readings such as "inf" or "NaN".
	ErrNotFinite = errors.New("reading is not a finite number")
)

// parseReading parses a raw payload, refusing values the tempo law cannot use.
func parseReading(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	return checkFinite(v)
}

func checkFinite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotFinite, v)
	}
	return v, nil
}

// Source supplies the current readings. Reads never fail; implementations
// fall back to their last known or configured default value.
type Source interface {
	ReadTemperature() float64 // degrees Fahrenheit
	ReadLight() float64
	Close() error
}

// New builds the configured source.
func New(cfg config.SensorSettings, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sensors", "source", cfg.Source)

	switch cfg.Source {
	case SourceSimulated, "":
		s := NewSimulated(cfg.Defaults.Temperature, cfg.Defaults.Light)
		if cfg.Daylight.Enabled {
			s.FollowDaylight(NewDaylight(cfg.Daylight), logger)
		}
		logger.Info("simulated sensors initialized",
			"temperature", cfg.Defaults.Temperature, "light", cfg.Defaults.Light, "daylight", cfg.Daylight.Enabled)
		return s, nil
	case SourceHardware:
		return NewHardware(cfg.Hardware, cfg.Defaults, logger), nil
	case SourceMQTT:
		return NewMQTT(cfg.MQTT, cfg.Defaults, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

func fahrenheit(celsius float64) float64 {
	return celsius*9/5 + 32
}

// ABOUTME: Validation of loaded settings
// ABOUTME: Rejects values the player cannot run with before anything starts
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/harperreed/nightchorus/internal/tempo"
)

// Validate checks the settings for values the player cannot use.
func (s *Settings) Validate() error {
	if _, err := s.Playback.BuildSchedule(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if ref := s.Playback.ReferenceTemperature; !(ref > tempo.MinReference) || math.IsInf(ref, 0) {
		return fmt.Errorf("%w: playback.reference_temperature must be above %g, got %g", ErrInvalid, tempo.MinReference, ref)
	}
	if th := s.Playback.LightThreshold; math.IsNaN(th) || math.IsInf(th, 0) {
		return fmt.Errorf("%w: playback.light_threshold must be finite", ErrInvalid)
	}

	t := s.Playback.Timing
	for name, d := range map[string]time.Duration{
		"check_interval":    t.CheckInterval,
		"playback_interval": t.PlaybackInterval,
		"render_timeout":    t.RenderTimeout,
	} {
		if d < time.Second {
			return fmt.Errorf("%w: playback.timing.%s must be at least 1s, got %s", ErrInvalid, name, d)
		}
	}
	if t.FadeTime < 0 {
		return fmt.Errorf("%w: fade_time must not be negative", ErrInvalid)
	}
	if 2*t.FadeTime > t.PlaybackInterval {
		return fmt.Errorf("%w: fade_time %s too long for playback_interval %s", ErrInvalid, t.FadeTime, t.PlaybackInterval)
	}

	if s.Audio.Volume < 0 || s.Audio.Volume > 100 {
		return fmt.Errorf("%w: audio.volume %d outside 0-100", ErrInvalid, s.Audio.Volume)
	}
	switch s.Audio.Backend {
	case "oto", "malgo":
	default:
		return fmt.Errorf("%w: unknown audio.backend %q", ErrInvalid, s.Audio.Backend)
	}

	switch s.Sensors.Source {
	case "simulated", "hardware":
	case "mqtt":
		if s.Sensors.MQTT.Broker == "" {
			return fmt.Errorf("%w: sensors.mqtt.broker is required", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown sensors.source %q", ErrInvalid, s.Sensors.Source)
	}
	switch s.Sensors.Hardware.TemperatureUnit {
	case "C", "F":
	default:
		return fmt.Errorf("%w: sensors.hardware.temperature_unit must be C or F", ErrInvalid)
	}

	if s.FFmpeg.SampleRate <= 0 {
		return fmt.Errorf("%w: ffmpeg.sample_rate must be positive", ErrInvalid)
	}
	if s.Paths.Data == "" {
		return fmt.Errorf("%w: paths.data is required", ErrInvalid)
	}
	return nil
}

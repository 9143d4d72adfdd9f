// ABOUTME: In-memory sensor source for development and tests
// ABOUTME: Readings move only when adjusted, or with the sun when daylight is enabled
package sensors

import (
	"log/slog"
	"sync"
	"time"
)

// Step is the amount one dev console key press moves a reading.
const Step = 2.0

// Simulated holds adjustable readings.
type Simulated struct {
	mu          sync.Mutex
	temperature float64
	light       float64
	manualLight bool
	daylight    *Daylight
	logger      *slog.Logger
	now         func() time.Time
}

// NewSimulated starts at the given readings.
func NewSimulated(temperature, light float64) *Simulated {
	return &Simulated{
		temperature: temperature,
		light:       light,
		now:         time.Now,
		logger:      slog.Default(),
	}
}

// FollowDaylight makes ReadLight track the sun until the light is adjusted by hand.
func (s *Simulated) FollowDaylight(d *Daylight, logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daylight = d
	s.manualLight = false
	if logger != nil {
		s.logger = logger
	}
}

func (s *Simulated) ReadTemperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temperature
}

func (s *Simulated) ReadLight() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lightLocked()
}

func (s *Simulated) lightLocked() float64 {
	if s.daylight == nil || s.manualLight {
		return s.light
	}
	level, err := s.daylight.Level(s.now())
	if err != nil {
		s.logger.Warn("daylight model unavailable, using last light level", "error", err)
		return s.light
	}
	s.light = level
	return level
}

// AdjustTemperature moves the temperature by delta and returns the new value.
func (s *Simulated) AdjustTemperature(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temperature += delta
	return s.temperature
}

// AdjustLight moves the light by delta from its current reading and pins it
// there, detaching from the daylight model.
func (s *Simulated) AdjustLight(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.light = s.lightLocked() + delta
	s.manualLight = true
	return s.light
}

func (s *Simulated) Close() error { return nil }

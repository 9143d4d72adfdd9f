// ABOUTME: Light level model derived from sun events at a location
// ABOUTME: Night before civil dawn and after civil dusk, linear ramps through twilight
package sensors

import (
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/nightchorus/internal/config"
	"github.com/sj14/astral/pkg/astral"
)

// SunEvents holds one day's sun events in UTC.
type SunEvents struct {
	CivilDawn time.Time
	Sunrise   time.Time
	Sunset    time.Time
	CivilDusk time.Time
}

// Daylight computes a light level for an instant.
type Daylight struct {
	observer   astral.Observer
	dayLevel   float64
	nightLevel float64

	mu    sync.Mutex
	cache map[string]SunEvents
}

func NewDaylight(cfg config.DaylightSettings) *Daylight {
	return &Daylight{
		observer:   astral.Observer{Latitude: cfg.Latitude, Longitude: cfg.Longitude},
		dayLevel:   cfg.DayLevel,
		nightLevel: cfg.NightLevel,
		cache:      make(map[string]SunEvents),
	}
}

// Events returns the sun events for the UTC date of t.
func (d *Daylight) Events(t time.Time) (SunEvents, error) {
	date := t.UTC()
	key := date.Format("2006-01-02")

	d.mu.Lock()
	ev, ok := d.cache[key]
	d.mu.Unlock()
	if ok {
		return ev, nil
	}

	var err error
	if ev.CivilDawn, err = astral.Dawn(d.observer, date, astral.DepressionCivil); err != nil {
		return SunEvents{}, fmt.Errorf("failed to calculate civil dawn: %w", err)
	}
	if ev.Sunrise, err = astral.Sunrise(d.observer, date); err != nil {
		return SunEvents{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}
	if ev.Sunset, err = astral.Sunset(d.observer, date); err != nil {
		return SunEvents{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}
	if ev.CivilDusk, err = astral.Dusk(d.observer, date, astral.DepressionCivil); err != nil {
		return SunEvents{}, fmt.Errorf("failed to calculate civil dusk: %w", err)
	}

	d.mu.Lock()
	d.cache[key] = ev
	d.mu.Unlock()
	return ev, nil
}

// Level returns the modelled light level at t.
func (d *Daylight) Level(t time.Time) (float64, error) {
	ev, err := d.Events(t)
	if err != nil {
		return 0, err
	}
	return d.levelFor(ev, t), nil
}

func (d *Daylight) levelFor(ev SunEvents, t time.Time) float64 {
	span := d.dayLevel - d.nightLevel
	switch {
	case t.Before(ev.CivilDawn) || !t.Before(ev.CivilDusk):
		return d.nightLevel
	case t.Before(ev.Sunrise):
		return d.nightLevel + span*progress(ev.CivilDawn, ev.Sunrise, t)
	case t.Before(ev.Sunset):
		return d.dayLevel
	default:
		return d.dayLevel - span*progress(ev.Sunset, ev.CivilDusk, t)
	}
}

// progress is how far t has moved from from to to, in [0, 1].
func progress(from, to, t time.Time) float64 {
	total := to.Sub(from)
	if total <= 0 {
		return 1
	}
	return float64(t.Sub(from)) / float64(total)
}

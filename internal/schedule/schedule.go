// ABOUTME: Seasonal species schedule made of recurring yearly date windows
// ABOUTME: Resolves a calendar date to the species that should be playing
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Inactive is returned when no configured window covers a date.
const Inactive = "inactive"

// ErrInvalidEntry is returned by Validate for malformed windows.
var ErrInvalidEntry = errors.New("invalid schedule entry")

// MonthDay is a day within a recurring year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// FromSlice builds a MonthDay from a [month, day] pair as found in config files.
func FromSlice(v []int) (MonthDay, error) {
	if len(v) != 2 {
		return MonthDay{}, fmt.Errorf("%w: expected [month, day], got %v", ErrInvalidEntry, v)
	}
	md := MonthDay{Month: time.Month(v[0]), Day: v[1]}
	if err := md.validate(); err != nil {
		return MonthDay{}, err
	}
	return md, nil
}

func (md MonthDay) validate() error {
	if md.Month < time.January || md.Month > time.December {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidEntry, md.Month)
	}
	// 2024 is a leap year so Feb 29 is accepted.
	last := time.Date(2024, md.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if md.Day < 1 || md.Day > last {
		return fmt.Errorf("%w: day %d out of range for %s", ErrInvalidEntry, md.Day, md.Month)
	}
	return nil
}

// in anchors md to the given year at midnight in loc.
func (md MonthDay) in(year int, loc *time.Location) time.Time {
	return time.Date(year, md.Month, md.Day, 0, 0, 0, 0, loc)
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%s %d", md.Month.String()[:3], md.Day)
}

// Entry is one species window. End before Start means the window wraps the year boundary.
type Entry struct {
	Species string
	Start   MonthDay
	End     MonthDay
}

// Wraps reports whether the window spans Dec 31 -> Jan 1.
func (e Entry) Wraps() bool {
	if e.End.Month != e.Start.Month {
		return e.End.Month < e.Start.Month
	}
	return e.End.Day < e.Start.Day
}

// Contains reports whether date falls inside the window. Comparison is by calendar day,
// both ends inclusive, anchored to the year of date.
func (e Entry) Contains(date time.Time) bool {
	loc := date.Location()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	start := e.Start.in(date.Year(), loc)
	end := e.End.in(date.Year(), loc)

	if e.Wraps() {
		return !day.Before(start) || !day.After(end)
	}
	return !day.Before(start) && !day.After(end)
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (%s - %s)", e.Species, e.Start, e.End)
}

// Schedule is an ordered list of windows; earlier entries win.
type Schedule []Entry

// Resolve returns the species of the first window containing date, or Inactive.
func (s Schedule) Resolve(date time.Time) string {
	for _, e := range s {
		if e.Contains(date) {
			return e.Species
		}
	}
	return Inactive
}

// Validate checks every entry.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: schedule is empty", ErrInvalidEntry)
	}
	for i, e := range s {
		if e.Species == "" {
			return fmt.Errorf("%w: entry %d has no species", ErrInvalidEntry, i)
		}
		if err := e.Start.validate(); err != nil {
			return fmt.Errorf("entry %d (%s) start: %w", i, e.Species, err)
		}
		if err := e.End.validate(); err != nil {
			return fmt.Errorf("entry %d (%s) end: %w", i, e.Species, err)
		}
	}
	return nil
}

// Species lists the distinct playable species in schedule order.
func (s Schedule) Species() []string {
	seen := make(map[string]bool, len(s))
	var out []string
	for _, e := range s {
		if e.Species == Inactive || seen[e.Species] {
			continue
		}
		seen[e.Species] = true
		out = append(out, e.Species)
	}
	return out
}

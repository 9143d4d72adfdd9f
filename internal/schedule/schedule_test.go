// ABOUTME: Tests for the seasonal species schedule
// ABOUTME: Covers plain and year-wrapping windows, ordering and validation
package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md(m time.Month, d int) MonthDay { return MonthDay{Month: m, Day: d} }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 21, 30, 0, 0, time.Local)
}

// commonSchedule mirrors the shipped defaults.
func commonSchedule() Schedule {
	return Schedule{
		{Species: "frogs", Start: md(time.January, 15), End: md(time.June, 30)},
		{Species: "crickets", Start: md(time.July, 1), End: md(time.November, 14)},
		{Species: Inactive, Start: md(time.November, 15), End: md(time.January, 14)},
	}
}

func TestResolveCommonSchedule(t *testing.T) {
	s := commonSchedule()

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"mid summer", date(2025, time.August, 10), "crickets"},
		{"spring", date(2025, time.April, 2), "frogs"},
		{"frogs first day", date(2025, time.January, 15), "frogs"},
		{"frogs last day late evening", date(2025, time.June, 30), "frogs"},
		{"crickets first day", date(2025, time.July, 1), "crickets"},
		{"crickets last day", date(2025, time.November, 14), "crickets"},
		{"december", date(2025, time.December, 1), Inactive},
		{"early january", date(2026, time.January, 10), Inactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Resolve(tt.date))
		})
	}
}

func TestResolveUnmatchedDateIsInactive(t *testing.T) {
	s := Schedule{
		{Species: "crickets", Start: md(time.July, 1), End: md(time.November, 14)},
	}

	assert.Equal(t, "crickets", s.Resolve(date(2025, time.September, 9)))
	assert.Equal(t, Inactive, s.Resolve(date(2025, time.March, 3)))
	assert.Equal(t, Inactive, s.Resolve(date(2025, time.December, 24)))
}

func TestWrappingWindow(t *testing.T) {
	e := Entry{Species: "owls", Start: md(time.November, 15), End: md(time.January, 14)}
	require.True(t, e.Wraps())

	assert.True(t, e.Contains(date(2025, time.December, 1)))
	assert.True(t, e.Contains(date(2025, time.January, 10)))
	assert.True(t, e.Contains(date(2025, time.November, 15)))
	assert.True(t, e.Contains(date(2025, time.January, 14)))
	assert.False(t, e.Contains(date(2025, time.June, 1)))
	assert.False(t, e.Contains(date(2025, time.January, 15)))
}

func TestNonWrappingWindow(t *testing.T) {
	e := Entry{Species: "frogs", Start: md(time.March, 1), End: md(time.March, 1)}
	assert.False(t, e.Wraps())
	assert.True(t, e.Contains(date(2025, time.March, 1)))
	assert.False(t, e.Contains(date(2025, time.March, 2)))
}

func TestResolveFirstMatchWins(t *testing.T) {
	s := Schedule{
		{Species: "crickets", Start: md(time.July, 1), End: md(time.December, 31)},
		{Species: Inactive, Start: md(time.November, 15), End: md(time.January, 14)},
	}

	assert.Equal(t, "crickets", s.Resolve(date(2025, time.December, 1)))
	assert.Equal(t, Inactive, s.Resolve(date(2026, time.January, 5)))
}

func TestFromSlice(t *testing.T) {
	got, err := FromSlice([]int{2, 29})
	require.NoError(t, err)
	assert.Equal(t, md(time.February, 29), got)

	for _, bad := range [][]int{{}, {1}, {13, 1}, {0, 4}, {4, 31}, {1, 0}, {1, 2, 3}} {
		_, err := FromSlice(bad)
		assert.ErrorIs(t, err, ErrInvalidEntry, "input %v", bad)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, commonSchedule().Validate())

	assert.ErrorIs(t, Schedule{}.Validate(), ErrInvalidEntry)
	assert.ErrorIs(t, Schedule{{Species: "", Start: md(1, 1), End: md(2, 1)}}.Validate(), ErrInvalidEntry)
	assert.ErrorIs(t, Schedule{{Species: "x", Start: md(1, 1), End: md(2, 30)}}.Validate(), ErrInvalidEntry)
}

func TestSpecies(t *testing.T) {
	s := append(commonSchedule(), Entry{Species: "frogs", Start: md(time.July, 1), End: md(time.July, 2)})
	assert.Equal(t, []string{"frogs", "crickets"}, s.Species())
}

package localday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func santiago(t *testing.T) *Calendar {
	t.Helper()
	cal, err := Load("America/Santiago")
	require.NoError(t, err)
	return cal
}

func TestCalendar_DayOf_UsesLocalZone(t *testing.T) {
	cal := santiago(t)

	// 02:30 UTC on the 15th is still the evening of the 14th in Santiago.
	instant := time.Date(2026, 10, 15, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-14", Format(cal.DayOf(instant)))

	instant = time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-15", Format(cal.DayOf(instant)))
}

func TestCalendar_Bounds_HalfOpen(t *testing.T) {
	cal := santiago(t)
	day, err := Parse("2026-10-15")
	require.NoError(t, err)

	start, end := cal.Bounds(day)
	assert.Equal(t, time.UTC, start.Location())
	assert.True(t, end.After(start))
	assert.Equal(t, day, cal.DayOf(start))
	assert.Equal(t, AddDays(day, 1), cal.DayOf(end))
	assert.Equal(t, day, cal.DayOf(end.Add(-time.Nanosecond)))
}

func TestCalendar_Bounds_UTC(t *testing.T) {
	cal := New(time.UTC)
	day := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	start, end := cal.Bounds(day)
	assert.Equal(t, day, start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestCalendar_TodayWithClock(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cal := New(time.UTC).WithClock(func() time.Time { return fixed })

	assert.Equal(t, "2026-03-01", Format(cal.Today()))
	assert.Equal(t, fixed, cal.Now())
}

func TestCalendar_DaysBetween(t *testing.T) {
	cal := New(time.UTC)
	a := time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 1, 31, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, cal.DaysBetween(a, b))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("15/10/2026")
	assert.Error(t, err)
}

func TestLoad_InvalidZone(t *testing.T) {
	_, err := Load("Mars/Olympus")
	assert.Error(t, err)
}

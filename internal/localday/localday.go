// Package localday maps instants to business calendar days.
//
// The shop works on a single local time zone. Every date-range query in the
// application asks a Calendar for the bounds of a day instead of comparing
// naive timestamps. Days are represented as midnight UTC values carrying the
// local civil date, which is also how they are stored in date columns.
package localday

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// Layout is the format used for dates in paths, query strings and exports.
const Layout = "2006-01-02"

// DefaultZone is used when no TIMEZONE is configured.
const DefaultZone = "America/Santiago"

// Calendar resolves instants to local calendar days.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New creates a calendar for the given location using the wall clock.
func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, now: time.Now}
}

// Load creates a calendar for an IANA zone name.
func Load(zone string) (*Calendar, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("zona horaria inválida %q: %w", zone, err)
	}
	return New(loc), nil
}

// WithClock returns a copy of the calendar reading time from now.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in UTC. Timestamps are persisted in UTC so
// that range comparisons behave the same on every database backend.
func (c *Calendar) Now() time.Time {
	return c.now().UTC()
}

// Today returns the current local day.
func (c *Calendar) Today() time.Time {
	return c.DayOf(c.now())
}

// DayOf returns the local day an instant falls in.
func (c *Calendar) DayOf(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Bounds returns the half-open UTC interval [start, end) covered by a local day.
// The interval follows the zone's offsets, so DST days are 23 or 25 hours long.
func (c *Calendar) Bounds(day time.Time) (start, end time.Time) {
	y, m, d := day.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, c.loc).UTC()
	end = time.Date(y, m, d+1, 0, 0, 0, 0, c.loc).UTC()
	return start, end
}

// MonthBounds returns the UTC interval covering the local month that contains day.
func (c *Calendar) MonthBounds(day time.Time) (start, end time.Time) {
	y, m, _ := day.Date()
	start = time.Date(y, m, 1, 0, 0, 0, 0, c.loc).UTC()
	end = time.Date(y, m+1, 1, 0, 0, 0, 0, c.loc).UTC()
	return start, end
}

// DaysBetween counts whole local days from a to b.
func (c *Calendar) DaysBetween(a, b time.Time) int {
	return int(c.DayOf(b).Sub(c.DayOf(a)).Hours() / 24)
}

// DaysSince counts whole days from a day value (as returned by Today) to today.
func (c *Calendar) DaysSince(day time.Time) int {
	y, m, d := day.Date()
	return int(c.Today().Sub(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)).Hours() / 24)
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	day, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q, use AAAA-MM-DD", s)
	}
	return day, nil
}

// Format writes a day as YYYY-MM-DD.
func Format(day time.Time) string {
	return day.Format(Layout)
}

// AddDays moves a day forward or backward.
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

package period

import (
	"fmt"
	"strings"
	"time"
)

// Clock returns the current instant.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time { return time.Now() }

// Resolver turns descriptors into concrete ranges in a fixed location.
type Resolver struct {
	now Clock
	loc *time.Location
}

// NewResolver creates a Resolver. A nil clock means the system clock and a
// nil location means time.Local.
func NewResolver(now Clock, loc *time.Location) *Resolver {
	if now == nil {
		now = SystemClock
	}

	if loc == nil {
		loc = time.Local
	}

	return &Resolver{now: now, loc: loc}
}

// Location returns the location boundaries are computed in.
func (r *Resolver) Location() *time.Location { return r.loc }

// Now returns the resolver's current instant in its location.
func (r *Resolver) Now() time.Time { return r.now().In(r.loc) }

var dateLayouts = []string{
	time.DateOnly,
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

// parseDate accepts a bare date, the canonical timestamp or RFC 3339.
// Values without an offset are read in loc.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}

	return time.Time{}, false
}

// ParseTime reads a user supplied date or timestamp in the resolver's zone.
func (r *Resolver) ParseTime(s string) (time.Time, error) {
	t, ok := parseDate(s, r.loc)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}

	return t, nil
}

// Resolve computes the inclusive range a descriptor denotes.
func (r *Resolver) Resolve(d Descriptor) (Range, error) {
	if d.Period == KindCustom {
		return r.resolveCustom(d)
	}

	ref, ok := parseDate(d.ReferenceDate, r.loc)
	if !ok {
		ref = r.Now()
	}

	var start, next time.Time

	switch d.Period {
	case KindDay:
		start = startOfDay(ref)
		next = start.AddDate(0, 0, 1)
	case KindWeek:
		// Monday is the first day of the week.
		offset := (int(ref.Weekday()) + 6) % 7
		start = startOfDay(ref).AddDate(0, 0, -offset)
		next = start.AddDate(0, 0, 7)
	case KindMonth:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, r.loc)
		next = start.AddDate(0, 1, 0)
	case KindQuarter:
		first := time.Month((int(ref.Month())-1)/3*3 + 1)
		start = time.Date(ref.Year(), first, 1, 0, 0, 0, 0, r.loc)
		next = start.AddDate(0, 3, 0)
	case KindSemester:
		first := time.January
		if ref.Month() >= time.July {
			first = time.July
		}

		start = time.Date(ref.Year(), first, 1, 0, 0, 0, 0, r.loc)
		next = start.AddDate(0, 6, 0)
	case KindYear:
		start = time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, r.loc)
		next = start.AddDate(1, 0, 0)
	default:
		return Range{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, d.Period)
	}

	return Range{Start: start, End: endBefore(next)}, nil
}

func (r *Resolver) resolveCustom(d Descriptor) (Range, error) {
	if strings.TrimSpace(d.StartDate) == "" || strings.TrimSpace(d.EndDate) == "" {
		return Range{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidCustomRange)
	}

	start, ok := parseDate(d.StartDate, r.loc)
	if !ok {
		return Range{}, fmt.Errorf("%w: cannot parse start date %q", ErrInvalidCustomRange, d.StartDate)
	}

	end, ok := parseDate(d.EndDate, r.loc)
	if !ok {
		return Range{}, fmt.Errorf("%w: cannot parse end date %q", ErrInvalidCustomRange, d.EndDate)
	}

	start = startOfDay(start)
	next := startOfDay(end).AddDate(0, 0, 1)

	if !start.Before(next) {
		return Range{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidCustomRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	return Range{Start: start, End: endBefore(next)}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endBefore returns the last millisecond before next, matching the precision
// of stored timestamps.
func endBefore(next time.Time) time.Time {
	return next.Add(-time.Millisecond)
}

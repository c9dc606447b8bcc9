// Package period computes normalized, inclusive date windows used by every
// aggregation query.
package period

import (
	"errors"
	"time"
)

// ErrInvalidRange indicates a custom range whose end precedes its start.
var ErrInvalidRange = errors.New("period end is before start")

// Range is an inclusive date window. Start is truncated to 00:00:00 and End
// is extended to 23:59:59.999999999 of its day; Days is the inclusive span.
type Range struct {
	Start time.Time
	End   time.Time
	Days  int
}

// Today returns the current day's bounds.
func Today() Range {
	return TodayAt(time.Now())
}

// TodayAt returns the bounds of the day containing now.
func TodayAt(now time.Time) Range {
	return Range{Start: startOfDay(now), End: endOfDay(now), Days: 1}
}

// Last7 returns a seven day window ending today.
func Last7() Range {
	return Last7At(time.Now())
}

// Last7At returns the seven day window ending on the day containing now.
func Last7At(now time.Time) Range {
	return Range{
		Start: startOfDay(now.AddDate(0, 0, -6)),
		End:   endOfDay(now),
		Days:  7,
	}
}

// CurrentMonth returns the window from the first of the month through today.
func CurrentMonth() Range {
	return CurrentMonthAt(time.Now())
}

// CurrentMonthAt returns the month-to-date window for the month containing now.
func CurrentMonthAt(now time.Time) Range {
	start := startOfDay(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
	end := endOfDay(now)
	return Range{Start: start, End: end, Days: daysInclusive(start, end)}
}

// Custom builds a window from two calendar dates, both included. Returns
// ErrInvalidRange when end falls before start.
func Custom(start, end time.Time) (Range, error) {
	if endOfDay(end).Before(startOfDay(start)) {
		return Range{}, ErrInvalidRange
	}
	s := startOfDay(start)
	e := endOfDay(end)
	return Range{Start: s, End: e, Days: daysInclusive(s, e)}, nil
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// daysInclusive counts calendar days between two normalized bounds. Using the
// date components directly keeps DST transitions from skewing the count.
func daysInclusive(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 12, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 12, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

package schedule

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date wire format used across the engine.
const DateLayout = "2006-01-02"

// =============================================================================
// CLOCK - Injected "now" so rules stay deterministic under test
// =============================================================================

// Clock supplies the current instant to notice-period and past-date checks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// LocalClock reads the wall clock in Loc, the zone request dates are parsed in.
// A nil Loc means UTC.
type LocalClock struct {
	Loc *time.Location
}

func (c LocalClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Loc)
}

// FixedClock always returns At.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayKey packs a calendar day into an ordered integer (20250507).
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Day comparisons read each value's calendar day in its own location. Convert
// instants with TodayFor before comparing them with calendar dates.
func SameDay(a, b time.Time) bool   { return dayKey(a) == dayKey(b) }
func DayBefore(a, b time.Time) bool { return dayKey(a) < dayKey(b) }
func DayAfter(a, b time.Time) bool  { return dayKey(a) > dayKey(b) }

// TodayFor views now in the location of the calendar date ref.
func TodayFor(now, ref time.Time) time.Time {
	return now.In(ref.Location())
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func IsWeekend(t time.Time) bool { return ISOWeekday(t) >= 6 }

// DaysBetween counts calendar days from `from` to `to`, ignoring time of day.
// Negative when to is before from.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int((t.Unix() - f.Unix()) / (24 * 60 * 60))
}

// CalendarDaysInclusive counts every day in [start, end], weekends included.
func CalendarDaysInclusive(start, end time.Time) int {
	n := DaysBetween(start, end) + 1
	if n < 0 {
		return 0
	}
	return n
}

// WorkdaysInclusive counts Monday-Friday days in [start, end].
func WorkdaysInclusive(start, end time.Time) int {
	count := 0
	for day := StartOfDay(start); !DayAfter(day, end); day = day.AddDate(0, 0, 1) {
		if !IsWeekend(day) {
			count++
		}
	}
	return count
}

// ParseDate parses a YYYY-MM-DD string at midnight in loc (UTC when nil).
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// TIME OF DAY - Wall-clock minute within a day
// =============================================================================

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// 1440 ("24:00") is accepted as an end-of-day marker.
type TimeOfDay int

const MinutesPerDay = 24 * 60

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	t := TimeOfDay(hour*60 + minute)
	if hour < 0 || minute < 0 || minute > 59 || t > MinutesPerDay {
		return 0, &TimeRangeError{Msg: fmt.Sprintf("time %02d:%02d out of range", hour, minute)}
	}
	return t, nil
}

// ParseTimeOfDay parses "15:04". "24:00" is the only accepted value past 23:59.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, &TimeRangeError{Msg: fmt.Sprintf("time %q is not HH:MM", s)}
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On places the time of day on the calendar day of date.
func (t TimeOfDay) On(date time.Time) time.Time {
	return StartOfDay(date).Add(time.Duration(t) * time.Minute)
}

// =============================================================================
// TIME RANGE - Immutable [start, end) window within a single day
// =============================================================================

// TimeRange is a half-open [start, end) window within one day.
// Fields are unexported: a TimeRange is never mutated after construction.
type TimeRange struct {
	start TimeOfDay
	end   TimeOfDay
}

// NewTimeRange fails with InvalidTimeRange unless start < end.
func NewTimeRange(start, end TimeOfDay) (TimeRange, error) {
	if start < 0 || end > MinutesPerDay {
		return TimeRange{}, &TimeRangeError{Start: start, End: end, Msg: "times must lie within one day"}
	}
	if start >= end {
		return TimeRange{}, &TimeRangeError{Start: start, End: end}
	}
	return TimeRange{start: start, end: end}, nil
}

// ParseTimeRange parses two "15:04" strings.
func ParseTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(s, e)
}

// MustTimeRange is ParseTimeRange that panics. Use for presets and tests.
func MustTimeRange(start, end string) TimeRange {
	tr, err := ParseTimeRange(start, end)
	if err != nil {
		panic(err)
	}
	return tr
}

func (r TimeRange) Start() TimeOfDay { return r.start }
func (r TimeRange) End() TimeOfDay   { return r.end }
func (r TimeRange) IsZero() bool     { return r.start == 0 && r.end == 0 }

// Overlaps uses half-open semantics: touching endpoints do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start < other.end && r.end > other.start
}

func (r TimeRange) DurationMinutes() int {
	return int(r.end - r.start)
}

func (r TimeRange) String() string {
	return r.start.String() + "-" + r.end.String()
}

type timeRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(timeRangeJSON{Start: r.start.String(), End: r.end.String()})
}

// UnmarshalJSON re-validates the invariant on decode.
func (r *TimeRange) UnmarshalJSON(data []byte) error {
	var raw timeRangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tr, err := ParseTimeRange(raw.Start, raw.End)
	if err != nil {
		return err
	}
	*r = tr
	return nil
}

/*
recurrence.go - Recurring availability rules

PURPOSE:
  A RecurrencePattern says which calendar dates an availability anchor repeats
  onto. It is an immutable value owned by its Availability: created with it,
  replaced wholesale on update, never patched in place.

RULE EVALUATION (IsDateValid):
  1. Excluded dates never match.
  2. Dates after Until never match.
  3. DAILY matches every remaining date.
  4. WEEKLY matches when DaysOfWeek is empty or holds the ISO weekday (Mon=1).
  5. MONTHLY matches when DaysOfMonth is empty or holds the day of month.

INTERVAL:
  Interval is validated and stored but not applied: interval=2 on a WEEKLY
  pattern still matches every selected weekday of every week.

WIRE FORMAT:
  {"frequency":"WEEKLY","interval":1,"daysOfWeek":[1,3,5],
   "excludeDates":["2025-05-07"],"until":"2025-06-30"}
*/
package schedule

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// RecurrencePattern is immutable; accessors return copies.
type RecurrencePattern struct {
	frequency    Frequency
	interval     int
	daysOfWeek   []int
	daysOfMonth  []int
	excludeDates []time.Time
	until        time.Time
}

// NewRecurrencePattern validates every field and fails with the first
// violated constraint.
func NewRecurrencePattern(
	frequency Frequency,
	interval int,
	daysOfWeek []int,
	daysOfMonth []int,
	excludeDates []time.Time,
	until time.Time,
) (RecurrencePattern, error) {
	if !frequency.IsValid() {
		return RecurrencePattern{}, &RecurrencePatternError{Field: "frequency", Reason: fmt.Sprintf("must be DAILY, WEEKLY or MONTHLY, got %q", frequency)}
	}
	if interval < 1 {
		return RecurrencePattern{}, &RecurrencePatternError{Field: "interval", Reason: fmt.Sprintf("must be at least 1, got %d", interval)}
	}
	for _, d := range daysOfWeek {
		if d < 1 || d > 7 {
			return RecurrencePattern{}, &RecurrencePatternError{Field: "daysOfWeek", Reason: fmt.Sprintf("value %d outside 1-7", d)}
		}
	}
	for _, d := range daysOfMonth {
		if d < 1 || d > 31 {
			return RecurrencePattern{}, &RecurrencePatternError{Field: "daysOfMonth", Reason: fmt.Sprintf("value %d outside 1-31", d)}
		}
	}
	for _, d := range excludeDates {
		if d.IsZero() {
			return RecurrencePattern{}, &RecurrencePatternError{Field: "excludeDates", Reason: "contains an empty date"}
		}
	}
	if until.IsZero() {
		return RecurrencePattern{}, &RecurrencePatternError{Field: "until", Reason: "is required"}
	}

	return RecurrencePattern{
		frequency:    frequency,
		interval:     interval,
		daysOfWeek:   sortedUnique(daysOfWeek),
		daysOfMonth:  sortedUnique(daysOfMonth),
		excludeDates: append([]time.Time(nil), excludeDates...),
		until:        until,
	}, nil
}

func (p RecurrencePattern) Frequency() Frequency { return p.frequency }
func (p RecurrencePattern) Interval() int        { return p.interval }
func (p RecurrencePattern) Until() time.Time     { return p.until }
func (p RecurrencePattern) DaysOfWeek() []int    { return append([]int(nil), p.daysOfWeek...) }
func (p RecurrencePattern) DaysOfMonth() []int   { return append([]int(nil), p.daysOfMonth...) }

func (p RecurrencePattern) ExcludeDates() []time.Time {
	return append([]time.Time(nil), p.excludeDates...)
}

// IsDateExcluded matches by calendar day, ignoring time of day.
func (p RecurrencePattern) IsDateExcluded(date time.Time) bool {
	for _, ex := range p.excludeDates {
		if SameDay(ex, date) {
			return true
		}
	}
	return false
}

// IsDateValid reports whether date is an occurrence of the pattern.
func (p RecurrencePattern) IsDateValid(date time.Time) bool {
	if p.IsDateExcluded(date) || DayAfter(date, p.until) {
		return false
	}

	switch p.frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		return len(p.daysOfWeek) == 0 || containsInt(p.daysOfWeek, ISOWeekday(date))
	case FrequencyMonthly:
		return len(p.daysOfMonth) == 0 || containsInt(p.daysOfMonth, date.Day())
	default:
		return false
	}
}

// Occurrences lists every valid date in [from, to], capped at Until.
func (p RecurrencePattern) Occurrences(from, to time.Time) []time.Time {
	var out []time.Time
	for day := StartOfDay(from); !DayAfter(day, to) && !DayAfter(day, p.until); day = day.AddDate(0, 0, 1) {
		if p.IsDateValid(day) {
			out = append(out, day)
		}
	}
	return out
}

// =============================================================================
// MAP / JSON DECODING
// =============================================================================

// ParseRecurrencePattern builds a pattern from a decoded JSON object.
// frequency, interval and until are required.
func ParseRecurrencePattern(raw map[string]any) (RecurrencePattern, error) {
	for _, key := range []string{"frequency", "interval", "until"} {
		if v, ok := raw[key]; !ok || v == nil {
			return RecurrencePattern{}, &RecurrencePatternError{Field: key, Reason: "is required"}
		}
	}

	freq, ok := raw["frequency"].(string)
	if !ok {
		return RecurrencePattern{}, &RecurrencePatternError{Field: "frequency", Reason: "must be a string"}
	}

	interval, ok := toInt(raw["interval"])
	if !ok {
		return RecurrencePattern{}, &RecurrencePatternError{Field: "interval", Reason: "must be an integer"}
	}

	daysOfWeek, err := intList(raw, "daysOfWeek")
	if err != nil {
		return RecurrencePattern{}, err
	}
	daysOfMonth, err := intList(raw, "daysOfMonth")
	if err != nil {
		return RecurrencePattern{}, err
	}

	var excludes []time.Time
	if v, ok := raw["excludeDates"]; ok && v != nil {
		items, ok := toSlice(v)
		if !ok {
			return RecurrencePattern{}, &RecurrencePatternError{Field: "excludeDates", Reason: "must be a list of dates"}
		}
		for _, item := range items {
			d, err := toDate(item)
			if err != nil {
				return RecurrencePattern{}, &RecurrencePatternError{Field: "excludeDates", Reason: err.Error()}
			}
			excludes = append(excludes, d)
		}
	}

	until, err := toDate(raw["until"])
	if err != nil {
		return RecurrencePattern{}, &RecurrencePatternError{Field: "until", Reason: err.Error()}
	}

	return NewRecurrencePattern(Frequency(freq), interval, daysOfWeek, daysOfMonth, excludes, until)
}

// ToMap is the inverse of ParseRecurrencePattern.
func (p RecurrencePattern) ToMap() map[string]any {
	excludes := make([]string, len(p.excludeDates))
	for i, d := range p.excludeDates {
		excludes[i] = FormatDate(d)
	}
	m := map[string]any{
		"frequency":    string(p.frequency),
		"interval":     p.interval,
		"excludeDates": excludes,
		"until":        FormatDate(p.until),
	}
	if len(p.daysOfWeek) > 0 {
		m["daysOfWeek"] = p.DaysOfWeek()
	}
	if len(p.daysOfMonth) > 0 {
		m["daysOfMonth"] = p.DaysOfMonth()
	}
	return m
}

func (p RecurrencePattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

func (p *RecurrencePattern) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return &RecurrencePatternError{Field: "pattern", Reason: "is not a JSON object"}
	}
	parsed, err := ParseRecurrencePattern(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func intList(raw map[string]any, key string) ([]int, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := toSlice(v)
	if !ok {
		return nil, &RecurrencePatternError{Field: key, Reason: "must be a list of integers"}
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := toInt(item)
		if !ok {
			return nil, &RecurrencePatternError{Field: key, Reason: fmt.Sprintf("value %v is not an integer", item)}
		}
		out = append(out, n)
	}
	return out, nil
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []int:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out, true
	case []string:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out, true
	case []time.Time:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func toDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, fmt.Errorf("is empty")
		}
		return d, nil
	case string:
		return ParseDate(d, time.UTC)
	}
	return time.Time{}, fmt.Errorf("value %v is not a date", v)
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func sortedUnique(xs []int) []int {
	if len(xs) == 0 {
		return nil
	}
	out := append([]int(nil), xs...)
	sort.Ints(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

package schedule

import "time"

// =============================================================================
// PERIOD - Inclusive time window used for repository range queries
// =============================================================================

// Period is the closed interval [Start, End].
//
// Examples:
//   - ISO week: Monday 00:00:00 - Sunday 23:59:59
//   - Calendar year: Jan 1 00:00:00 - Dec 31 23:59:59
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Days returns every calendar day touched by the period.
func (p Period) Days() []time.Time {
	var days []time.Time
	for day := StartOfDay(p.Start); !DayAfter(day, p.End); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

func (p Period) String() string {
	return "[" + FormatDate(p.Start) + ", " + FormatDate(p.End) + "]"
}

// WeekOf returns the ISO week containing t, in t's location.
func WeekOf(t time.Time) Period {
	monday := StartOfDay(t).AddDate(0, 0, -(ISOWeekday(t) - 1))
	return Period{
		Start: monday,
		End:   monday.AddDate(0, 0, 7).Add(-time.Second),
	}
}

// YearOf returns the calendar year containing t, in t's location.
func YearOf(t time.Time) Period {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return Period{
		Start: start,
		End:   start.AddDate(1, 0, 0).Add(-time.Second),
	}
}

// DayOf returns the single calendar day containing t.
func DayOf(t time.Time) Period {
	start := StartOfDay(t)
	return Period{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Second)}
}

// Span returns the smallest period covering both p and o.
func (p Period) Span(o Period) Period {
	out := p
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if o.End.After(out.End) {
		out.End = o.End
	}
	return out
}

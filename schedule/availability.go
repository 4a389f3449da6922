package schedule

import "time"

// =============================================================================
// AVAILABILITY - A window in which an employee can be scheduled
// =============================================================================

// Availability is either a one-off window on Date or, when Recurrence is set,
// an anchor that repeats onto every date the pattern accepts from Date on.
type Availability struct {
	ID             string
	UserID         string
	EmploymentType EmploymentType
	TimeRange      TimeRange
	Date           time.Time
	Recurrence     *RecurrencePattern
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a Availability) DurationMinutes() int { return a.TimeRange.DurationMinutes() }
func (a Availability) IsRecurring() bool    { return a.Recurrence != nil }

// StartsAt is the instant the window opens on its anchor date.
func (a Availability) StartsAt() time.Time {
	return a.TimeRange.Start().On(a.Date)
}

// Covers reports whether the window applies on date.
func (a Availability) Covers(date time.Time) bool {
	if SameDay(a.Date, date) {
		return true
	}
	if a.Recurrence == nil || DayBefore(date, a.Date) {
		return false
	}
	return a.Recurrence.IsDateValid(date)
}

// Occurrences expands the window over [from, to]. A one-off availability
// yields at most its own date.
func (a Availability) Occurrences(from, to time.Time) []time.Time {
	if a.Recurrence == nil {
		if DayBefore(a.Date, from) || DayAfter(a.Date, to) {
			return nil
		}
		return []time.Time{StartOfDay(a.Date)}
	}
	if DayBefore(from, a.Date) {
		from = a.Date
	}
	return a.Recurrence.Occurrences(from, to)
}

// GenerationParams parameterises automatic availability generation.
type GenerationParams struct {
	UserID       string
	WorkingHours TimeRange
}

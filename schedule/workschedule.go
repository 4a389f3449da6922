package schedule

import "time"

// WorkSchedule is a concrete, non-recurring shift assignment.
type WorkSchedule struct {
	ID          string
	UserID      string
	SkillPathID string
	Date        time.Time
	TimeRange   TimeRange
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (w WorkSchedule) DurationMinutes() int { return w.TimeRange.DurationMinutes() }

/*
validator.go - Shift (WorkSchedule) conflict rules

PURPOSE:
  Checks a candidate shift against the user's other shifts on the same day.

RULES (fail-fast, in order):
  1. Skill path  - must be one of the user's skill paths, when the user has any
  2. Overlap     - no existing same-day shift may overlap the candidate
  3. Daily cap   - existing + candidate minutes <= 12 hours
  4. Break       - at least 30 minutes between the candidate and every other shift

  The candidate's own ID is ignored, so an update never conflicts with the
  version it replaces.
*/
package shift

import (
	"fmt"

	"github.com/warp/workforce-engine/schedule"
)

const (
	DefaultMaxDailyMinutes = 12 * 60
	DefaultMinBreakMinutes = 30
)

type Validator struct {
	MaxDailyMinutes int
	MinBreakMinutes int
	detector        schedule.ConflictDetector
}

func NewValidator() *Validator {
	return &Validator{
		MaxDailyMinutes: DefaultMaxDailyMinutes,
		MinBreakMinutes: DefaultMinBreakMinutes,
	}
}

func (v *Validator) Validate(candidate schedule.WorkSchedule, existing []schedule.WorkSchedule, skillPaths []string) error {
	if len(skillPaths) > 0 && !contains(skillPaths, candidate.SkillPathID) {
		return &schedule.WorkScheduleError{
			Reason:  schedule.ReasonSkillPathMismatch,
			Message: fmt.Sprintf("skill path %q is not assigned to user %s", candidate.SkillPathID, candidate.UserID),
		}
	}

	var sameDay []schedule.WorkSchedule
	for _, w := range existing {
		if w.ID == candidate.ID || w.UserID != candidate.UserID || !schedule.SameDay(w.Date, candidate.Date) {
			continue
		}
		sameDay = append(sameDay, w)
	}

	for _, w := range sameDay {
		if v.detector.Overlaps(w.TimeRange, candidate.TimeRange) {
			return &schedule.WorkScheduleError{
				Reason:  schedule.ReasonOverlappingShift,
				Message: fmt.Sprintf("shift %s overlaps shift %s (%s)", candidate.TimeRange, w.ID, w.TimeRange),
			}
		}
	}

	total := candidate.DurationMinutes()
	for _, w := range sameDay {
		total += w.DurationMinutes()
	}
	if total > v.MaxDailyMinutes {
		return &schedule.WorkScheduleError{
			Reason:  schedule.ReasonDailyCap,
			Message: fmt.Sprintf("%d minutes scheduled on %s, limit is %d", total, schedule.FormatDate(candidate.Date), v.MaxDailyMinutes),
		}
	}

	for _, w := range sameDay {
		gap, _ := v.detector.GapMinutes(w.TimeRange, candidate.TimeRange)
		if gap < v.MinBreakMinutes {
			return &schedule.WorkScheduleError{
				Reason:  schedule.ReasonMinimumBreak,
				Message: fmt.Sprintf("only %d minutes between shift %s and %s, need %d", gap, w.ID, candidate.TimeRange, v.MinBreakMinutes),
			}
		}
	}

	return nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

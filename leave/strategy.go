/*
strategy.go - Leave validation per leave type

PURPOSE:
  Each leave type gets one TypeStrategy. All of them share the base checks
  below; some add a notice period or a yearly balance on top.

BASE CHECKS (fail-fast, in order):
  1. start <= end                      -> invalidDateRange
  2. end >= today                      -> endDateInPast
  3. duration <= max duration          -> exceededMaxDuration(max)
  4. no overlap with an active request -> overlappingRequest

PER TYPE:
  ┌─────────────────┬──────────┬──────────┬────────┬─────────────────────┐
  │ Type            │ Approval │ Max days │ Notice │ Duration counts     │
  ├─────────────────┼──────────┼──────────┼────────┼─────────────────────┤
  │ SICK_LEAVE      │ no       │ 14       │ -      │ calendar days       │
  │ HOLIDAY         │ yes      │ 26       │ 7      │ Mon-Fri only        │
  │ PERSONAL_LEAVE  │ yes      │ 4/year   │ -      │ Mon-Fri only        │
  │ PATERNITY_LEAVE │ yes      │ 14       │ 14     │ calendar days       │
  │ MATERNITY_LEAVE │ yes      │ 182      │ 14     │ calendar days       │
  └─────────────────┴──────────┴──────────┴────────┴─────────────────────┘

  Notice is the calendar-day distance from today to the start date.

SEE ALSO:
  - schedule/leave.go: request lifecycle
  - factory/rules.go: overrides max days and notice from JSON
*/
package leave

import (
	"time"

	"github.com/warp/workforce-engine/schedule"
)

// TypeStrategy validates requests of one leave type.
type TypeStrategy interface {
	Type() schedule.LeaveType
	RequiresApproval() bool
	MaxDuration() int
	Duration(start, end time.Time) int
	ValidateRequest(req schedule.LeaveRequest, existing []schedule.LeaveRequest) error
}

// Limits are the tunable numbers of a leave type. NoticeDays of 0 disables
// the notice check.
type Limits struct {
	MaxDuration int
	NoticeDays  int
}

// DefaultLimits returns a fresh copy of the built-in limits.
func DefaultLimits() map[schedule.LeaveType]Limits {
	return map[schedule.LeaveType]Limits{
		schedule.SickLeave:      {MaxDuration: 14},
		schedule.Holiday:        {MaxDuration: 26, NoticeDays: 7},
		schedule.PersonalLeave:  {MaxDuration: 4},
		schedule.PaternityLeave: {MaxDuration: 14, NoticeDays: 14},
		schedule.MaternityLeave: {MaxDuration: 182, NoticeDays: 14},
	}
}

// =============================================================================
// BASE - Shared behaviour
// =============================================================================

type base struct {
	leaveType        schedule.LeaveType
	limits           Limits
	clock            schedule.Clock
	calendarDays     bool
	requiresApproval bool
}

func (b base) Type() schedule.LeaveType { return b.leaveType }
func (b base) RequiresApproval() bool   { return b.requiresApproval }
func (b base) MaxDuration() int         { return b.limits.MaxDuration }

func (b base) Duration(start, end time.Time) int {
	if b.calendarDays {
		return schedule.CalendarDaysInclusive(start, end)
	}
	return schedule.WorkdaysInclusive(start, end)
}

func (b base) ValidateRequest(req schedule.LeaveRequest, existing []schedule.LeaveRequest) error {
	return b.validateBase(req, existing)
}

func (b base) validateBase(req schedule.LeaveRequest, existing []schedule.LeaveRequest) error {
	if schedule.DayAfter(req.StartDate, req.EndDate) {
		return schedule.InvalidDateRange()
	}
	if schedule.DayBefore(req.EndDate, schedule.TodayFor(b.clock.Now(), req.EndDate)) {
		return schedule.EndDateInPast()
	}
	if b.Duration(req.StartDate, req.EndDate) > b.limits.MaxDuration {
		return schedule.ExceededMaxDuration(b.limits.MaxDuration)
	}
	for _, other := range existing {
		if other.ID == req.ID || other.UserID != req.UserID || !other.Status.IsActive() {
			continue
		}
		if req.Overlaps(other) {
			return schedule.OverlappingRequest(other.ID)
		}
	}
	return nil
}

func (b base) validateNotice(req schedule.LeaveRequest) error {
	if b.limits.NoticeDays <= 0 {
		return nil
	}
	if schedule.DaysBetween(schedule.TodayFor(b.clock.Now(), req.StartDate), req.StartDate) < b.limits.NoticeDays {
		return schedule.TooEarlyRequest(b.limits.NoticeDays)
	}
	return nil
}

// withNotice runs the base checks then the notice check.
type withNotice struct {
	base
}

func (s withNotice) ValidateRequest(req schedule.LeaveRequest, existing []schedule.LeaveRequest) error {
	if err := s.validateBase(req, existing); err != nil {
		return err
	}
	return s.validateNotice(req)
}

// =============================================================================
// STRATEGIES
// =============================================================================

type SickLeave struct{ base }

func NewSickLeave(clock schedule.Clock, limits Limits) *SickLeave {
	return &SickLeave{base{
		leaveType:    schedule.SickLeave,
		limits:       limits,
		clock:        clock,
		calendarDays: true,
	}}
}

type Holiday struct{ withNotice }

func NewHoliday(clock schedule.Clock, limits Limits) *Holiday {
	return &Holiday{withNotice{base{
		leaveType:        schedule.Holiday,
		limits:           limits,
		clock:            clock,
		requiresApproval: true,
	}}}
}

type PaternityLeave struct{ withNotice }

func NewPaternityLeave(clock schedule.Clock, limits Limits) *PaternityLeave {
	return &PaternityLeave{withNotice{base{
		leaveType:        schedule.PaternityLeave,
		limits:           limits,
		clock:            clock,
		calendarDays:     true,
		requiresApproval: true,
	}}}
}

type MaternityLeave struct{ withNotice }

func NewMaternityLeave(clock schedule.Clock, limits Limits) *MaternityLeave {
	return &MaternityLeave{withNotice{base{
		leaveType:        schedule.MaternityLeave,
		limits:           limits,
		clock:            clock,
		calendarDays:     true,
		requiresApproval: true,
	}}}
}

// PersonalLeave caps the days taken per calendar year.
type PersonalLeave struct{ base }

func NewPersonalLeave(clock schedule.Clock, limits Limits) *PersonalLeave {
	return &PersonalLeave{base{
		leaveType:        schedule.PersonalLeave,
		limits:           limits,
		clock:            clock,
		requiresApproval: true,
	}}
}

func (s *PersonalLeave) ValidateRequest(req schedule.LeaveRequest, existing []schedule.LeaveRequest) error {
	if err := s.validateBase(req, existing); err != nil {
		return err
	}

	used := s.UsedThisYear(req, existing)
	requested := s.Duration(req.StartDate, req.EndDate)
	if used+requested > s.limits.MaxDuration {
		remaining := s.limits.MaxDuration - used
		if remaining < 0 {
			remaining = 0
		}
		return schedule.InsufficientLeaveBalance(remaining)
	}
	return nil
}

// UsedThisYear sums approved personal leave starting in the current year.
func (s *PersonalLeave) UsedThisYear(req schedule.LeaveRequest, existing []schedule.LeaveRequest) int {
	year := schedule.TodayFor(s.clock.Now(), req.StartDate).Year()
	used := 0
	for _, other := range existing {
		if other.ID == req.ID || other.UserID != req.UserID ||
			other.Type != schedule.PersonalLeave || other.Status != schedule.LeaveApproved ||
			other.StartDate.Year() != year {
			continue
		}
		used += s.Duration(other.StartDate, other.EndDate)
	}
	return used
}

// Strategies builds every leave strategy, applying overrides on top of
// DefaultLimits.
func Strategies(clock schedule.Clock, overrides map[schedule.LeaveType]Limits) []TypeStrategy {
	limits := DefaultLimits()
	for t, l := range overrides {
		limits[t] = l
	}
	return []TypeStrategy{
		NewSickLeave(clock, limits[schedule.SickLeave]),
		NewHoliday(clock, limits[schedule.Holiday]),
		NewPersonalLeave(clock, limits[schedule.PersonalLeave]),
		NewPaternityLeave(clock, limits[schedule.PaternityLeave]),
		NewMaternityLeave(clock, limits[schedule.MaternityLeave]),
	}
}

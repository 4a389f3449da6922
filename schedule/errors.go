/*
errors.go - Centralized error types for the scheduling rule engine

PURPOSE:
  Every rule violation the engine can report lives here, so strategies in
  availability/, leave/ and shift/ return the same typed errors and callers
  can branch with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Value errors       - InvalidTimeRange, InvalidRecurrencePattern
  2. Rule violations    - InvalidAvailability, InvalidLeaveRequest, InvalidWorkSchedule
  3. Lifecycle errors   - InvalidStateTransition
  4. Configuration      - NoStrategyFound (programmer error, never user input)
  5. Storage            - NotFound, Conflict

USAGE:
  if errors.Is(err, schedule.ErrInvalidLeaveRequest) {
      var lerr *schedule.LeaveRequestError
      errors.As(err, &lerr) // lerr.Code, lerr.Value
  }

SEE ALSO:
  - api/errors.go: maps these errors onto HTTP status codes
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrInvalidTimeRange         = errors.New("invalid time range")
	ErrInvalidRecurrencePattern = errors.New("invalid recurrence pattern")
	ErrInvalidAvailability      = errors.New("invalid availability")
	ErrInvalidLeaveRequest      = errors.New("invalid leave request")
	ErrInvalidWorkSchedule      = errors.New("invalid work schedule")
	ErrInvalidStateTransition   = errors.New("invalid state transition")

	// ErrNoStrategyFound means the engine was wired without a strategy for a
	// known type tag. It indicates a configuration bug.
	ErrNoStrategyFound = errors.New("no strategy found")

	// ErrNotFound is returned by stores when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned by stores when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("conflicting record")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TimeRangeError reports a start/end pair that does not satisfy start < end.
type TimeRangeError struct {
	Start TimeOfDay
	End   TimeOfDay
	Msg   string
}

func (e *TimeRangeError) Error() string {
	if e.Msg != "" {
		return "invalid time range: " + e.Msg
	}
	return fmt.Sprintf("invalid time range: start %s must be before end %s", e.Start, e.End)
}

func (e *TimeRangeError) Unwrap() error { return ErrInvalidTimeRange }

// RecurrencePatternError names the first violated constraint.
type RecurrencePatternError struct {
	Field  string
	Reason string
}

func (e *RecurrencePatternError) Error() string {
	return fmt.Sprintf("invalid recurrence pattern: %s %s", e.Field, e.Reason)
}

func (e *RecurrencePatternError) Unwrap() error { return ErrInvalidRecurrencePattern }

// AvailabilityReason is the rule an availability window broke.
type AvailabilityReason string

const (
	ReasonDailyLimit   AvailabilityReason = "daily limit"
	ReasonWeeklyLimit  AvailabilityReason = "weekly limit"
	ReasonNoticePeriod AvailabilityReason = "notice period"
	ReasonWeekendWork  AvailabilityReason = "no weekend work"
	ReasonOverlap      AvailabilityReason = "overlap"
	ReasonUnsupported  AvailabilityReason = "employment type mismatch"
)

type AvailabilityError struct {
	Reason  AvailabilityReason
	Message string
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("invalid availability (%s): %s", e.Reason, e.Message)
}

func (e *AvailabilityError) Unwrap() error { return ErrInvalidAvailability }

// InvalidAvailability builds an AvailabilityError with a formatted message.
func InvalidAvailability(reason AvailabilityReason, format string, args ...any) *AvailabilityError {
	return &AvailabilityError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// LeaveErrorCode identifies which leave rule was violated.
type LeaveErrorCode string

const (
	LeaveInvalidDateRange    LeaveErrorCode = "invalidDateRange"
	LeaveEndDateInPast       LeaveErrorCode = "endDateInPast"
	LeaveExceededMaxDuration LeaveErrorCode = "exceededMaxDuration"
	LeaveOverlappingRequest  LeaveErrorCode = "overlappingRequest"
	LeaveInsufficientBalance LeaveErrorCode = "insufficientLeaveBalance"
	LeaveTooEarlyRequest     LeaveErrorCode = "tooEarlyRequest"
)

// LeaveRequestError carries the numeric parameter of the violated rule:
// the max duration, the remaining balance or the required notice days.
type LeaveRequestError struct {
	Code    LeaveErrorCode
	Value   int
	Message string
}

func (e *LeaveRequestError) Error() string {
	return "invalid leave request: " + e.Message
}

func (e *LeaveRequestError) Unwrap() error { return ErrInvalidLeaveRequest }

func InvalidDateRange() *LeaveRequestError {
	return &LeaveRequestError{Code: LeaveInvalidDateRange, Message: "start date must not be after end date"}
}

func EndDateInPast() *LeaveRequestError {
	return &LeaveRequestError{Code: LeaveEndDateInPast, Message: "end date is in the past"}
}

func ExceededMaxDuration(limit int) *LeaveRequestError {
	return &LeaveRequestError{
		Code:    LeaveExceededMaxDuration,
		Value:   limit,
		Message: fmt.Sprintf("leave exceeds the maximum duration of %d days", limit),
	}
}

func OverlappingRequest(existingID string) *LeaveRequestError {
	return &LeaveRequestError{
		Code:    LeaveOverlappingRequest,
		Message: fmt.Sprintf("leave overlaps existing request %s", existingID),
	}
}

func InsufficientLeaveBalance(remaining int) *LeaveRequestError {
	return &LeaveRequestError{
		Code:    LeaveInsufficientBalance,
		Value:   remaining,
		Message: fmt.Sprintf("insufficient leave balance, %d days remaining", remaining),
	}
}

func TooEarlyRequest(noticeDays int) *LeaveRequestError {
	return &LeaveRequestError{
		Code:    LeaveTooEarlyRequest,
		Value:   noticeDays,
		Message: fmt.Sprintf("leave must be requested at least %d days in advance", noticeDays),
	}
}

// WorkScheduleReason is the shift rule that was broken.
type WorkScheduleReason string

const (
	ReasonSkillPathMismatch WorkScheduleReason = "skill path mismatch"
	ReasonOverlappingShift  WorkScheduleReason = "overlapping shift"
	ReasonDailyCap          WorkScheduleReason = "12 hour cap"
	ReasonMinimumBreak      WorkScheduleReason = "30 minute break"
)

type WorkScheduleError struct {
	Reason  WorkScheduleReason
	Message string
}

func (e *WorkScheduleError) Error() string {
	return fmt.Sprintf("invalid work schedule (%s): %s", e.Reason, e.Message)
}

func (e *WorkScheduleError) Unwrap() error { return ErrInvalidWorkSchedule }

// StateTransitionError reports an action attempted from a state that forbids it.
type StateTransitionError struct {
	From   LeaveStatus
	Action string
	Msg    string
}

func (e *StateTransitionError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("cannot %s leave request in status %s: %s", e.Action, e.From, e.Msg)
	}
	return fmt.Sprintf("cannot %s leave request in status %s", e.Action, e.From)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// NoStrategyFoundError names the type tag no strategy was registered for.
type NoStrategyFoundError struct {
	Kind string // "employment type" or "leave type"
	Type string
}

func (e *NoStrategyFoundError) Error() string {
	return fmt.Sprintf("no strategy found for %s %q", e.Kind, e.Type)
}

func (e *NoStrategyFoundError) Unwrap() error { return ErrNoStrategyFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is a recoverable-by-resubmission
// rule violation.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidRecurrencePattern) ||
		errors.Is(err, ErrInvalidAvailability) ||
		errors.Is(err, ErrInvalidLeaveRequest) ||
		errors.Is(err, ErrInvalidWorkSchedule)
}

// IsConfigError returns true for wiring bugs that should be logged loudly.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNoStrategyFound)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

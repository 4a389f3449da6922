/*
leave.go - Leave requests and their approval state machine

PURPOSE:
  A LeaveRequest is an employee's request for time off of one type. Rule
  validation lives in leave/; this file only owns the lifecycle.

STATE MACHINE:
  ┌─────────┐  approve   ┌──────────┐  cancel (before start)
  │ PENDING │──────────▶│ APPROVED │──────────────────────┐
  └─────────┘            └──────────┘                      ▼
       │  reject         ┌──────────┐               ┌───────────┐
       ├───────────────▶│ REJECTED │               │ CANCELLED │
       │                 └──────────┘               └───────────┘
       │  cancel                                           ▲
       └───────────────────────────────────────────────────┘

  REJECTED and CANCELLED are terminal. Leave types that don't require
  approval (sick leave) are created directly in APPROVED.

SEE ALSO:
  - leave/: per-type validation strategies
  - service/leave.go: persists transitions inside a transaction
*/
package schedule

import (
	"fmt"
	"strings"
	"time"
)

type LeaveType string

const (
	SickLeave      LeaveType = "SICK_LEAVE"
	Holiday        LeaveType = "HOLIDAY"
	PersonalLeave  LeaveType = "PERSONAL_LEAVE"
	PaternityLeave LeaveType = "PATERNITY_LEAVE"
	MaternityLeave LeaveType = "MATERNITY_LEAVE"
)

func LeaveTypes() []LeaveType {
	return []LeaveType{SickLeave, Holiday, PersonalLeave, PaternityLeave, MaternityLeave}
}

func ParseLeaveType(s string) (LeaveType, error) {
	candidate := LeaveType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range LeaveTypes() {
		if t == candidate {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown leave type %q", s)
}

type LeaveStatus string

const (
	LeavePending   LeaveStatus = "PENDING"
	LeaveApproved  LeaveStatus = "APPROVED"
	LeaveRejected  LeaveStatus = "REJECTED"
	LeaveCancelled LeaveStatus = "CANCELLED"
)

func ParseLeaveStatus(s string) (LeaveStatus, error) {
	switch st := LeaveStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case LeavePending, LeaveApproved, LeaveRejected, LeaveCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown leave status %q", s)
}

// IsActive reports whether a request in this status still blocks its dates.
func (s LeaveStatus) IsActive() bool {
	return s == LeavePending || s == LeaveApproved
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type LeaveRequest struct {
	ID        string
	UserID    string
	Type      LeaveType
	Status    LeaveStatus
	StartDate time.Time
	EndDate   time.Time
	Reason    string

	// Approval tracking
	ApproverID   *string
	ApprovalDate *time.Time
	Comments     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLeaveRequest builds a request at the start of its lifecycle. Dates are
// truncated to midnight. When requiresApproval is false the request is
// auto-approved at creation.
func NewLeaveRequest(
	id, userID string,
	leaveType LeaveType,
	start, end time.Time,
	reason string,
	requiresApproval bool,
	now time.Time,
) LeaveRequest {
	r := LeaveRequest{
		ID:        id,
		UserID:    userID,
		Type:      leaveType,
		Status:    LeavePending,
		StartDate: StartOfDay(start),
		EndDate:   StartOfDay(end),
		Reason:    reason,
		CreatedAt: now,
	}
	if !requiresApproval {
		approvedAt := now
		r.Status = LeaveApproved
		r.ApprovalDate = &approvedAt
	}
	return r
}

// Approve is legal only from PENDING.
func (r *LeaveRequest) Approve(approverID, comments string, now time.Time) error {
	return r.decide(LeaveApproved, "approve", approverID, comments, now)
}

// Reject is legal only from PENDING.
func (r *LeaveRequest) Reject(approverID, comments string, now time.Time) error {
	return r.decide(LeaveRejected, "reject", approverID, comments, now)
}

func (r *LeaveRequest) decide(to LeaveStatus, action, approverID, comments string, now time.Time) error {
	if r.Status != LeavePending {
		return &StateTransitionError{From: r.Status, Action: action}
	}
	r.Status = to
	r.ApproverID = &approverID
	r.ApprovalDate = &now
	r.Comments = comments
	r.UpdatedAt = now
	return nil
}

// Cancel withdraws a pending request, or an approved one that hasn't started.
func (r *LeaveRequest) Cancel(now time.Time) error {
	switch r.Status {
	case LeaveCancelled, LeaveRejected:
		return &StateTransitionError{From: r.Status, Action: "cancel"}
	case LeaveApproved:
		if !DayAfter(r.StartDate, TodayFor(now, r.StartDate)) {
			return &StateTransitionError{From: r.Status, Action: "cancel", Msg: "leave has already started"}
		}
	}
	r.Status = LeaveCancelled
	r.UpdatedAt = now
	return nil
}

// Overlaps uses closed-interval semantics over calendar days.
func (r LeaveRequest) Overlaps(other LeaveRequest) bool {
	return !DayAfter(r.StartDate, other.EndDate) && !DayBefore(r.EndDate, other.StartDate)
}

// Period covers every day of the request, end day included.
func (r LeaveRequest) Period() Period {
	return Period{Start: StartOfDay(r.StartDate), End: DayOf(r.EndDate).End}
}

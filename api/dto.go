/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes of the HTTP contract, kept apart from the domain types so the
  wire format can evolve without touching the engine.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

WIRE FORMATS:
  Dates:       "2025-06-02" (YYYY-MM-DD, in the server's timezone)
  Timestamps:  RFC 3339
  Time ranges: {"start":"09:00","end":"17:00"}
  Recurrence:  {"frequency":"WEEKLY","interval":1,"daysOfWeek":[1,3],
                "excludeDates":[],"until":"2025-06-30"}

VALIDATION:
  Handlers parse dates; TimeRange and RecurrencePattern validate themselves
  on decode. Everything else is the service's and the engine's job.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/workforce-engine/schedule"
)

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Email          string              `json:"email,omitempty"`
	EmploymentType string              `json:"employment_type"`
	WorkingHours   *schedule.TimeRange `json:"working_hours,omitempty"`
	SkillPathIDs   []string            `json:"skill_path_ids"`
	CreatedAt      string              `json:"created_at"`
}

type CreateUserRequest struct {
	ID             string              `json:"id,omitempty"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	EmploymentType string              `json:"employment_type"`
	WorkingHours   *schedule.TimeRange `json:"working_hours,omitempty"`
	SkillPathIDs   []string            `json:"skill_path_ids,omitempty"`
}

func toUserDTO(u schedule.User) UserDTO {
	skills := u.SkillPathIDs
	if skills == nil {
		skills = []string{}
	}
	return UserDTO{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		EmploymentType: string(u.EmploymentType),
		WorkingHours:   u.WorkingHours,
		SkillPathIDs:   skills,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// AVAILABILITIES
// =============================================================================

type AvailabilityDTO struct {
	ID             string                      `json:"id"`
	UserID         string                      `json:"user_id"`
	EmploymentType string                      `json:"employment_type"`
	Date           string                      `json:"date"`
	TimeRange      schedule.TimeRange          `json:"time_range"`
	Recurrence     *schedule.RecurrencePattern `json:"recurrence,omitempty"`
	CreatedAt      string                      `json:"created_at"`
	UpdatedAt      string                      `json:"updated_at"`
}

type AvailabilityRequest struct {
	Date       string                      `json:"date"`
	TimeRange  *schedule.TimeRange         `json:"time_range"`
	Recurrence *schedule.RecurrencePattern `json:"recurrence,omitempty"`
}

// GenerateRequest defaults to the next ISO work week when both dates are empty.
type GenerateRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type OccurrencesDTO struct {
	AvailabilityID string   `json:"availability_id"`
	TimeRange      string   `json:"time_range"`
	Dates          []string `json:"dates"`
}

func toAvailabilityDTO(a schedule.Availability) AvailabilityDTO {
	return AvailabilityDTO{
		ID:             a.ID,
		UserID:         a.UserID,
		EmploymentType: string(a.EmploymentType),
		Date:           schedule.FormatDate(a.Date),
		TimeRange:      a.TimeRange,
		Recurrence:     a.Recurrence,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
}

func toAvailabilityDTOs(as []schedule.Availability) []AvailabilityDTO {
	out := make([]AvailabilityDTO, len(as))
	for i, a := range as {
		out[i] = toAvailabilityDTO(a)
	}
	return out
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type LeaveRequestDTO struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	LeaveType    string  `json:"leave_type"`
	Status       string  `json:"status"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Reason       string  `json:"reason,omitempty"`
	ApproverID   *string `json:"approver_id,omitempty"`
	ApprovalDate *string `json:"approval_date,omitempty"`
	Comments     string  `json:"comments,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

type DecisionRequest struct {
	ApproverID string `json:"approver_id"`
	Comments   string `json:"comments"`
}

func toLeaveRequestDTO(r schedule.LeaveRequest) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:         r.ID,
		UserID:     r.UserID,
		LeaveType:  string(r.Type),
		Status:     string(r.Status),
		StartDate:  schedule.FormatDate(r.StartDate),
		EndDate:    schedule.FormatDate(r.EndDate),
		Reason:     r.Reason,
		ApproverID: r.ApproverID,
		Comments:   r.Comments,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.ApprovalDate != nil {
		dto.ApprovalDate = strPtr(r.ApprovalDate.Format(time.RFC3339))
	}
	if !r.UpdatedAt.IsZero() {
		dto.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toLeaveRequestDTOs(rs []schedule.LeaveRequest) []LeaveRequestDTO {
	out := make([]LeaveRequestDTO, len(rs))
	for i, r := range rs {
		out[i] = toLeaveRequestDTO(r)
	}
	return out
}

// =============================================================================
// SHIFTS
// =============================================================================

type ShiftDTO struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	SkillPathID string             `json:"skill_path_id,omitempty"`
	Date        string             `json:"date"`
	TimeRange   schedule.TimeRange `json:"time_range"`
	Notes       string             `json:"notes,omitempty"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
}

type ShiftRequest struct {
	SkillPathID string              `json:"skill_path_id"`
	Date        string              `json:"date"`
	TimeRange   *schedule.TimeRange `json:"time_range"`
	Notes       string              `json:"notes"`
}

func toShiftDTO(w schedule.WorkSchedule) ShiftDTO {
	return ShiftDTO{
		ID:          w.ID,
		UserID:      w.UserID,
		SkillPathID: w.SkillPathID,
		Date:        schedule.FormatDate(w.Date),
		TimeRange:   w.TimeRange,
		Notes:       w.Notes,
		CreatedAt:   w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   w.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// ADMIN / ERRORS
// =============================================================================

type GenerationRunDTO struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Users     int               `json:"users"`
	Generated int               `json:"generated"`
	Failed    map[string]string `json:"failed"`
	RanAt     string            `json:"ran_at"`
}

type SchedulerStatusDTO struct {
	Enabled bool              `json:"enabled"`
	Spec    string            `json:"spec"`
	NextRun string            `json:"next_run,omitempty"`
	LastRun *GenerationRunDTO `json:"last_run,omitempty"`
}

// ErrorResponse is the body of every non-2xx response. Code and Value carry
// the machine-readable reason of a rule violation.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
	Value   *int   `json:"value,omitempty"`
}

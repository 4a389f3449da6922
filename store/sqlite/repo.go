package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/warp/workforce-engine/schedule"
)

// instantLayout is fixed-width so stored instants sort as text.
const instantLayout = "2006-01-02T15:04:05.000000000Z"

// repo runs the queries against either the database or an open transaction.
type repo struct {
	q   sqlx.ExtContext
	loc *time.Location
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func (r *repo) parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(instantLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt timestamp %q: %w", s, err)
	}
	return t.In(r.loc), nil
}

func (r *repo) parseDay(s string) (time.Time, error) {
	return schedule.ParseDate(s, r.loc)
}

func nullInstant(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatInstant(*t), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// writeErr maps constraint violations onto the schedule sentinels.
func writeErr(what, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueConstraintError(err):
		return fmt.Errorf("%s %s: %w", what, id, schedule.ErrConflict)
	case isForeignKeyError(err):
		return fmt.Errorf("%s %s references an unknown user: %w", what, id, schedule.ErrNotFound)
	}
	return fmt.Errorf("failed to save %s: %w", what, err)
}

func readErr(what, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, schedule.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

func (r *repo) deleteByID(ctx context.Context, table, what, id string) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, schedule.ErrNotFound)
	}
	return nil
}

// =============================================================================
// USERS
// =============================================================================

type userRow struct {
	ID             string        `db:"id"`
	Name           string        `db:"name"`
	Email          string        `db:"email"`
	EmploymentType string        `db:"employment_type"`
	WorkingStart   sql.NullInt64 `db:"working_start"`
	WorkingEnd     sql.NullInt64 `db:"working_end"`
	SkillPathsJSON string        `db:"skill_paths_json"`
	CreatedAt      string        `db:"created_at"`
}

const userColumns = `id, name, email, employment_type, working_start, working_end, skill_paths_json, created_at`

func (r *repo) CreateUser(ctx context.Context, u schedule.User) error {
	skills := u.SkillPathIDs
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	row := userRow{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		EmploymentType: string(u.EmploymentType),
		SkillPathsJSON: string(skillsJSON),
		CreatedAt:      formatInstant(u.CreatedAt),
	}
	if u.WorkingHours != nil {
		row.WorkingStart = sql.NullInt64{Int64: int64(u.WorkingHours.Start()), Valid: true}
		row.WorkingEnd = sql.NullInt64{Int64: int64(u.WorkingHours.End()), Valid: true}
	}

	_, err = sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :name, :email, :employment_type, :working_start, :working_end, :skill_paths_json, :created_at)
	`, row)
	return writeErr("user", u.ID, err)
}

func (r *repo) GetUser(ctx context.Context, id string) (schedule.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return schedule.User{}, readErr("user", id, err)
	}
	return r.toUser(row)
}

func (r *repo) ListUsersByEmploymentType(ctx context.Context, t schedule.EmploymentType) ([]schedule.User, error) {
	var rows []userRow
	if err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT `+userColumns+` FROM users WHERE employment_type = ? ORDER BY id`, string(t)); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]schedule.User, 0, len(rows))
	for _, row := range rows {
		u, err := r.toUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *repo) toUser(row userRow) (schedule.User, error) {
	u := schedule.User{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		EmploymentType: schedule.EmploymentType(row.EmploymentType),
	}
	if err := json.Unmarshal([]byte(row.SkillPathsJSON), &u.SkillPathIDs); err != nil {
		return schedule.User{}, fmt.Errorf("corrupt skill paths for user %s: %w", row.ID, err)
	}
	if row.WorkingStart.Valid && row.WorkingEnd.Valid {
		tr, err := schedule.NewTimeRange(schedule.TimeOfDay(row.WorkingStart.Int64), schedule.TimeOfDay(row.WorkingEnd.Int64))
		if err != nil {
			return schedule.User{}, err
		}
		u.WorkingHours = &tr
	}
	var err error
	if u.CreatedAt, err = r.parseInstant(row.CreatedAt); err != nil {
		return schedule.User{}, err
	}
	return u, nil
}

// =============================================================================
// AVAILABILITIES
// =============================================================================

type availabilityRow struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	EmploymentType string         `db:"employment_type"`
	DateAt         string         `db:"date_at"`
	Day            string         `db:"day"`
	StartMinute    int            `db:"start_minute"`
	EndMinute      int            `db:"end_minute"`
	RecurrenceJSON sql.NullString `db:"recurrence_json"`
	CreatedAt      string         `db:"created_at"`
	UpdatedAt      string         `db:"updated_at"`
}

const availabilityColumns = `id, user_id, employment_type, date_at, day, start_minute, end_minute, recurrence_json, created_at, updated_at`

func (r *repo) SaveAvailability(ctx context.Context, a schedule.Availability) error {
	row := availabilityRow{
		ID:             a.ID,
		UserID:         a.UserID,
		EmploymentType: string(a.EmploymentType),
		DateAt:         formatInstant(a.Date),
		Day:            schedule.FormatDate(a.Date),
		StartMinute:    int(a.TimeRange.Start()),
		EndMinute:      int(a.TimeRange.End()),
		CreatedAt:      formatInstant(a.CreatedAt),
		UpdatedAt:      formatInstant(a.UpdatedAt),
	}
	if a.Recurrence != nil {
		data, err := json.Marshal(a.Recurrence)
		if err != nil {
			return err
		}
		row.RecurrenceJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO availabilities (`+availabilityColumns+`)
		VALUES (:id, :user_id, :employment_type, :date_at, :day, :start_minute, :end_minute, :recurrence_json, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			date_at = excluded.date_at,
			day = excluded.day,
			start_minute = excluded.start_minute,
			end_minute = excluded.end_minute,
			recurrence_json = excluded.recurrence_json,
			updated_at = excluded.updated_at
	`, row)
	return writeErr("availability", a.ID, err)
}

func (r *repo) GetAvailability(ctx context.Context, id string) (schedule.Availability, error) {
	var row availabilityRow
	if err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+availabilityColumns+` FROM availabilities WHERE id = ?`, id); err != nil {
		return schedule.Availability{}, readErr("availability", id, err)
	}
	return r.toAvailability(row)
}

func (r *repo) DeleteAvailability(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "availabilities", "availability", id)
}

func (r *repo) FindAvailabilitiesByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]schedule.Availability, error) {
	var rows []availabilityRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT `+availabilityColumns+` FROM availabilities
		WHERE user_id = ? AND date_at BETWEEN ? AND ?
		ORDER BY date_at, start_minute
	`, userID, formatInstant(start), formatInstant(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query availabilities: %w", err)
	}
	out := make([]schedule.Availability, 0, len(rows))
	for _, row := range rows {
		a, err := r.toAvailability(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *repo) toAvailability(row availabilityRow) (schedule.Availability, error) {
	tr, err := schedule.NewTimeRange(schedule.TimeOfDay(row.StartMinute), schedule.TimeOfDay(row.EndMinute))
	if err != nil {
		return schedule.Availability{}, err
	}
	a := schedule.Availability{
		ID:             row.ID,
		UserID:         row.UserID,
		EmploymentType: schedule.EmploymentType(row.EmploymentType),
		TimeRange:      tr,
	}
	if row.RecurrenceJSON.Valid {
		var p schedule.RecurrencePattern
		if err := json.Unmarshal([]byte(row.RecurrenceJSON.String), &p); err != nil {
			return schedule.Availability{}, fmt.Errorf("corrupt recurrence for availability %s: %w", row.ID, err)
		}
		a.Recurrence = &p
	}
	if a.Date, err = r.parseInstant(row.DateAt); err != nil {
		return schedule.Availability{}, err
	}
	if a.CreatedAt, err = r.parseInstant(row.CreatedAt); err != nil {
		return schedule.Availability{}, err
	}
	if a.UpdatedAt, err = r.parseInstant(row.UpdatedAt); err != nil {
		return schedule.Availability{}, err
	}
	return a, nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type leaveRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	LeaveType    string         `db:"leave_type"`
	Status       string         `db:"status"`
	StartDay     string         `db:"start_day"`
	EndDay       string         `db:"end_day"`
	Reason       string         `db:"reason"`
	ApproverID   sql.NullString `db:"approver_id"`
	ApprovalDate sql.NullString `db:"approval_date"`
	Comments     string         `db:"comments"`
	CreatedAt    string         `db:"created_at"`
	UpdatedAt    sql.NullString `db:"updated_at"`
}

const leaveColumns = `id, user_id, leave_type, status, start_day, end_day, reason, approver_id, approval_date, comments, created_at, updated_at`

func (r *repo) SaveLeaveRequest(ctx context.Context, lr schedule.LeaveRequest) error {
	row := leaveRow{
		ID:           lr.ID,
		UserID:       lr.UserID,
		LeaveType:    string(lr.Type),
		Status:       string(lr.Status),
		StartDay:     schedule.FormatDate(lr.StartDate),
		EndDay:       schedule.FormatDate(lr.EndDate),
		Reason:       lr.Reason,
		ApproverID:   nullString(lr.ApproverID),
		ApprovalDate: nullInstant(lr.ApprovalDate),
		Comments:     lr.Comments,
		CreatedAt:    formatInstant(lr.CreatedAt),
		UpdatedAt:    nullInstant(&lr.UpdatedAt),
	}

	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO leave_requests (`+leaveColumns+`)
		VALUES (:id, :user_id, :leave_type, :status, :start_day, :end_day, :reason, :approver_id, :approval_date, :comments, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			approver_id = excluded.approver_id,
			approval_date = excluded.approval_date,
			comments = excluded.comments,
			updated_at = excluded.updated_at
	`, row)
	return writeErr("leave request", lr.ID, err)
}

func (r *repo) GetLeaveRequest(ctx context.Context, id string) (schedule.LeaveRequest, error) {
	var row leaveRow
	if err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+leaveColumns+` FROM leave_requests WHERE id = ?`, id); err != nil {
		return schedule.LeaveRequest{}, readErr("leave request", id, err)
	}
	return r.toLeaveRequest(row)
}

func (r *repo) FindLeaveRequestsByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]schedule.LeaveRequest, error) {
	return r.queryLeave(ctx, `
		SELECT `+leaveColumns+` FROM leave_requests
		WHERE user_id = ? AND start_day <= ? AND end_day >= ?
		ORDER BY start_day, id
	`, userID, schedule.FormatDate(end), schedule.FormatDate(start))
}

func (r *repo) ListLeaveRequestsByStatus(ctx context.Context, status schedule.LeaveStatus) ([]schedule.LeaveRequest, error) {
	return r.queryLeave(ctx, `
		SELECT `+leaveColumns+` FROM leave_requests
		WHERE status = ?
		ORDER BY start_day, id
	`, string(status))
}

func (r *repo) queryLeave(ctx context.Context, query string, args ...any) ([]schedule.LeaveRequest, error) {
	var rows []leaveRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	out := make([]schedule.LeaveRequest, 0, len(rows))
	for _, row := range rows {
		lr, err := r.toLeaveRequest(row)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, nil
}

func (r *repo) toLeaveRequest(row leaveRow) (schedule.LeaveRequest, error) {
	lr := schedule.LeaveRequest{
		ID:       row.ID,
		UserID:   row.UserID,
		Type:     schedule.LeaveType(row.LeaveType),
		Status:   schedule.LeaveStatus(row.Status),
		Reason:   row.Reason,
		Comments: row.Comments,
	}
	var err error
	if lr.StartDate, err = r.parseDay(row.StartDay); err != nil {
		return schedule.LeaveRequest{}, err
	}
	if lr.EndDate, err = r.parseDay(row.EndDay); err != nil {
		return schedule.LeaveRequest{}, err
	}
	if lr.CreatedAt, err = r.parseInstant(row.CreatedAt); err != nil {
		return schedule.LeaveRequest{}, err
	}
	if row.ApproverID.Valid {
		approver := row.ApproverID.String
		lr.ApproverID = &approver
	}
	if row.ApprovalDate.Valid {
		at, err := r.parseInstant(row.ApprovalDate.String)
		if err != nil {
			return schedule.LeaveRequest{}, err
		}
		lr.ApprovalDate = &at
	}
	if row.UpdatedAt.Valid {
		if lr.UpdatedAt, err = r.parseInstant(row.UpdatedAt.String); err != nil {
			return schedule.LeaveRequest{}, err
		}
	}
	return lr, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

type shiftRow struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	SkillPathID string `db:"skill_path_id"`
	Day         string `db:"day"`
	StartMinute int    `db:"start_minute"`
	EndMinute   int    `db:"end_minute"`
	Notes       string `db:"notes"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

const shiftColumns = `id, user_id, skill_path_id, day, start_minute, end_minute, notes, created_at, updated_at`

func (r *repo) SaveShift(ctx context.Context, w schedule.WorkSchedule) error {
	row := shiftRow{
		ID:          w.ID,
		UserID:      w.UserID,
		SkillPathID: w.SkillPathID,
		Day:         schedule.FormatDate(w.Date),
		StartMinute: int(w.TimeRange.Start()),
		EndMinute:   int(w.TimeRange.End()),
		Notes:       w.Notes,
		CreatedAt:   formatInstant(w.CreatedAt),
		UpdatedAt:   formatInstant(w.UpdatedAt),
	}

	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO shifts (`+shiftColumns+`)
		VALUES (:id, :user_id, :skill_path_id, :day, :start_minute, :end_minute, :notes, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			skill_path_id = excluded.skill_path_id,
			day = excluded.day,
			start_minute = excluded.start_minute,
			end_minute = excluded.end_minute,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, row)
	return writeErr("shift", w.ID, err)
}

func (r *repo) GetShift(ctx context.Context, id string) (schedule.WorkSchedule, error) {
	var row shiftRow
	if err := sqlx.GetContext(ctx, r.q, &row, `SELECT `+shiftColumns+` FROM shifts WHERE id = ?`, id); err != nil {
		return schedule.WorkSchedule{}, readErr("shift", id, err)
	}
	return r.toShift(row)
}

func (r *repo) DeleteShift(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "shifts", "shift", id)
}

func (r *repo) FindShiftsByUserAndDate(ctx context.Context, userID string, date time.Time) ([]schedule.WorkSchedule, error) {
	var rows []shiftRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE user_id = ? AND day = ?
		ORDER BY start_minute
	`, userID, schedule.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	out := make([]schedule.WorkSchedule, 0, len(rows))
	for _, row := range rows {
		w, err := r.toShift(row)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *repo) toShift(row shiftRow) (schedule.WorkSchedule, error) {
	tr, err := schedule.NewTimeRange(schedule.TimeOfDay(row.StartMinute), schedule.TimeOfDay(row.EndMinute))
	if err != nil {
		return schedule.WorkSchedule{}, err
	}
	w := schedule.WorkSchedule{
		ID:          row.ID,
		UserID:      row.UserID,
		SkillPathID: row.SkillPathID,
		TimeRange:   tr,
		Notes:       row.Notes,
	}
	if w.Date, err = r.parseDay(row.Day); err != nil {
		return schedule.WorkSchedule{}, err
	}
	if w.CreatedAt, err = r.parseInstant(row.CreatedAt); err != nil {
		return schedule.WorkSchedule{}, err
	}
	if w.UpdatedAt, err = r.parseInstant(row.UpdatedAt); err != nil {
		return schedule.WorkSchedule{}, err
	}
	return w, nil
}

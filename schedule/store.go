/*
store.go - Persistence interfaces consumed by the service layer

PURPOSE:
  The rule engine never touches storage: callers fetch the relevant existing
  records, hand them to the engine, and persist the candidate when it passes.
  These interfaces are that caller's view of the database.

CONSISTENCY:
  Fetch, validate and write must happen inside one TxStore.WithTx call so a
  concurrent submission cannot validate against a stale snapshot. The SQLite
  store also rejects two availabilities or shifts for the same user starting
  at the same minute of the same day with ErrConflict.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite via sqlx
  - schedule/store/memory.go: in-memory, for tests and development

SEE ALSO:
  - service/: the only package that opens transactions
*/
package schedule

import (
	"context"
	"time"
)

type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsersByEmploymentType(ctx context.Context, t EmploymentType) ([]User, error)
}

type AvailabilityStore interface {
	// SaveAvailability inserts or replaces by ID.
	SaveAvailability(ctx context.Context, a Availability) error
	GetAvailability(ctx context.Context, id string) (Availability, error)
	DeleteAvailability(ctx context.Context, id string) error

	// FindAvailabilitiesByUserAndDateRange returns windows whose anchor date
	// lies in [start, end], ordered by date then start time.
	FindAvailabilitiesByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]Availability, error)
}

type LeaveStore interface {
	// SaveLeaveRequest inserts or replaces by ID.
	SaveLeaveRequest(ctx context.Context, r LeaveRequest) error
	GetLeaveRequest(ctx context.Context, id string) (LeaveRequest, error)

	// FindLeaveRequestsByUserAndDateRange returns requests whose
	// [StartDate, EndDate] intersects [start, end], in any status.
	FindLeaveRequestsByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]LeaveRequest, error)

	// ListLeaveRequestsByStatus is the approval queue when status is PENDING.
	ListLeaveRequestsByStatus(ctx context.Context, status LeaveStatus) ([]LeaveRequest, error)
}

type ShiftStore interface {
	// SaveShift inserts or replaces by ID.
	SaveShift(ctx context.Context, w WorkSchedule) error
	GetShift(ctx context.Context, id string) (WorkSchedule, error)
	DeleteShift(ctx context.Context, id string) error
	FindShiftsByUserAndDate(ctx context.Context, userID string, date time.Time) ([]WorkSchedule, error)
}

type Store interface {
	UserStore
	AvailabilityStore
	LeaveStore
	ShiftStore
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

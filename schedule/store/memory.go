// Package store provides an in-memory schedule.TxStore.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/workforce-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex
	d  data
}

type data struct {
	users          map[string]schedule.User
	availabilities map[string]schedule.Availability
	leaveRequests  map[string]schedule.LeaveRequest
	shifts         map[string]schedule.WorkSchedule
}

func newData() data {
	return data{
		users:          make(map[string]schedule.User),
		availabilities: make(map[string]schedule.Availability),
		leaveRequests:  make(map[string]schedule.LeaveRequest),
		shifts:         make(map[string]schedule.WorkSchedule),
	}
}

func NewMemory() *Memory {
	return &Memory{d: newData()}
}

// ----- users -----

func (m *Memory) CreateUser(_ context.Context, u schedule.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.createUser(u)
}

func (m *Memory) GetUser(_ context.Context, id string) (schedule.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getUser(id)
}

func (m *Memory) ListUsersByEmploymentType(_ context.Context, t schedule.EmploymentType) ([]schedule.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.listUsersByEmploymentType(t), nil
}

// ----- availabilities -----

func (m *Memory) SaveAvailability(_ context.Context, a schedule.Availability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.saveAvailability(a)
}

func (m *Memory) GetAvailability(_ context.Context, id string) (schedule.Availability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getAvailability(id)
}

func (m *Memory) DeleteAvailability(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.deleteAvailability(id)
}

func (m *Memory) FindAvailabilitiesByUserAndDateRange(_ context.Context, userID string, start, end time.Time) ([]schedule.Availability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.findAvailabilities(userID, start, end), nil
}

// ----- leave requests -----

func (m *Memory) SaveLeaveRequest(_ context.Context, r schedule.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d.leaveRequests[r.ID] = r
	return nil
}

func (m *Memory) GetLeaveRequest(_ context.Context, id string) (schedule.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getLeaveRequest(id)
}

func (m *Memory) FindLeaveRequestsByUserAndDateRange(_ context.Context, userID string, start, end time.Time) ([]schedule.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.findLeaveRequests(userID, start, end), nil
}

func (m *Memory) ListLeaveRequestsByStatus(_ context.Context, status schedule.LeaveStatus) ([]schedule.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.listLeaveRequestsByStatus(status), nil
}

// ----- shifts -----

func (m *Memory) SaveShift(_ context.Context, w schedule.WorkSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.saveShift(w)
}

func (m *Memory) GetShift(_ context.Context, id string) (schedule.WorkSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.getShift(id)
}

func (m *Memory) DeleteShift(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.deleteShift(id)
}

func (m *Memory) FindShiftsByUserAndDate(_ context.Context, userID string, date time.Time) ([]schedule.WorkSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.findShifts(userID, date), nil
}

// =============================================================================
// UNLOCKED OPERATIONS - callers hold the lock
// =============================================================================

func (d *data) createUser(u schedule.User) error {
	if _, ok := d.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID, schedule.ErrConflict)
	}
	d.users[u.ID] = u
	return nil
}

func (d *data) getUser(id string) (schedule.User, error) {
	u, ok := d.users[id]
	if !ok {
		return schedule.User{}, fmt.Errorf("user %s: %w", id, schedule.ErrNotFound)
	}
	return u, nil
}

func (d *data) listUsersByEmploymentType(t schedule.EmploymentType) []schedule.User {
	var out []schedule.User
	for _, u := range d.users {
		if u.EmploymentType == t {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *data) saveAvailability(a schedule.Availability) error {
	for _, other := range d.availabilities {
		if other.ID != a.ID && other.UserID == a.UserID &&
			schedule.SameDay(other.Date, a.Date) && other.TimeRange.Start() == a.TimeRange.Start() {
			return fmt.Errorf("availability %s collides with %s: %w", a.ID, other.ID, schedule.ErrConflict)
		}
	}
	d.availabilities[a.ID] = a
	return nil
}

func (d *data) getAvailability(id string) (schedule.Availability, error) {
	a, ok := d.availabilities[id]
	if !ok {
		return schedule.Availability{}, fmt.Errorf("availability %s: %w", id, schedule.ErrNotFound)
	}
	return a, nil
}

func (d *data) deleteAvailability(id string) error {
	if _, ok := d.availabilities[id]; !ok {
		return fmt.Errorf("availability %s: %w", id, schedule.ErrNotFound)
	}
	delete(d.availabilities, id)
	return nil
}

func (d *data) findAvailabilities(userID string, start, end time.Time) []schedule.Availability {
	p := schedule.Period{Start: start, End: end}
	var out []schedule.Availability
	for _, a := range d.availabilities {
		if a.UserID == userID && p.Contains(a.Date) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt().Before(out[j].StartsAt()) })
	return out
}

func (d *data) getLeaveRequest(id string) (schedule.LeaveRequest, error) {
	r, ok := d.leaveRequests[id]
	if !ok {
		return schedule.LeaveRequest{}, fmt.Errorf("leave request %s: %w", id, schedule.ErrNotFound)
	}
	return r, nil
}

func (d *data) findLeaveRequests(userID string, start, end time.Time) []schedule.LeaveRequest {
	window := schedule.LeaveRequest{StartDate: start, EndDate: end}
	var out []schedule.LeaveRequest
	for _, r := range d.leaveRequests {
		if r.UserID == userID && r.Overlaps(window) {
			out = append(out, r)
		}
	}
	sortLeave(out)
	return out
}

func (d *data) listLeaveRequestsByStatus(status schedule.LeaveStatus) []schedule.LeaveRequest {
	var out []schedule.LeaveRequest
	for _, r := range d.leaveRequests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	sortLeave(out)
	return out
}

func sortLeave(rs []schedule.LeaveRequest) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].StartDate.Equal(rs[j].StartDate) {
			return rs[i].StartDate.Before(rs[j].StartDate)
		}
		return rs[i].ID < rs[j].ID
	})
}

func (d *data) saveShift(w schedule.WorkSchedule) error {
	for _, other := range d.shifts {
		if other.ID != w.ID && other.UserID == w.UserID &&
			schedule.SameDay(other.Date, w.Date) && other.TimeRange.Start() == w.TimeRange.Start() {
			return fmt.Errorf("shift %s collides with %s: %w", w.ID, other.ID, schedule.ErrConflict)
		}
	}
	d.shifts[w.ID] = w
	return nil
}

func (d *data) getShift(id string) (schedule.WorkSchedule, error) {
	w, ok := d.shifts[id]
	if !ok {
		return schedule.WorkSchedule{}, fmt.Errorf("shift %s: %w", id, schedule.ErrNotFound)
	}
	return w, nil
}

func (d *data) deleteShift(id string) error {
	if _, ok := d.shifts[id]; !ok {
		return fmt.Errorf("shift %s: %w", id, schedule.ErrNotFound)
	}
	delete(d.shifts, id)
	return nil
}

func (d *data) findShifts(userID string, date time.Time) []schedule.WorkSchedule {
	var out []schedule.WorkSchedule
	for _, w := range d.shifts {
		if w.UserID == userID && schedule.SameDay(w.Date, date) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeRange.Start() < out[j].TimeRange.Start() })
	return out
}

func (d *data) clone() data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.availabilities {
		c.availabilities[k] = v
	}
	for k, v := range d.leaveRequests {
		c.leaveRequests[k] = v
	}
	for k, v := range d.shifts {
		c.shifts[k] = v
	}
	return c
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
// The write lock is held for the whole call, so transactions are serial.
func (tm *TxMemory) WithTx(_ context.Context, fn func(schedule.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.d.clone()
	if err := fn(&txView{d: &tm.d}); err != nil {
		tm.d = snapshot
		return err
	}
	return nil
}

// txView runs against the parent's data without taking the lock.
type txView struct {
	d *data
}

func (v *txView) CreateUser(_ context.Context, u schedule.User) error { return v.d.createUser(u) }

func (v *txView) GetUser(_ context.Context, id string) (schedule.User, error) {
	return v.d.getUser(id)
}

func (v *txView) ListUsersByEmploymentType(_ context.Context, t schedule.EmploymentType) ([]schedule.User, error) {
	return v.d.listUsersByEmploymentType(t), nil
}

func (v *txView) SaveAvailability(_ context.Context, a schedule.Availability) error {
	return v.d.saveAvailability(a)
}

func (v *txView) GetAvailability(_ context.Context, id string) (schedule.Availability, error) {
	return v.d.getAvailability(id)
}

func (v *txView) DeleteAvailability(_ context.Context, id string) error {
	return v.d.deleteAvailability(id)
}

func (v *txView) FindAvailabilitiesByUserAndDateRange(_ context.Context, userID string, start, end time.Time) ([]schedule.Availability, error) {
	return v.d.findAvailabilities(userID, start, end), nil
}

func (v *txView) SaveLeaveRequest(_ context.Context, r schedule.LeaveRequest) error {
	v.d.leaveRequests[r.ID] = r
	return nil
}

func (v *txView) GetLeaveRequest(_ context.Context, id string) (schedule.LeaveRequest, error) {
	return v.d.getLeaveRequest(id)
}

func (v *txView) FindLeaveRequestsByUserAndDateRange(_ context.Context, userID string, start, end time.Time) ([]schedule.LeaveRequest, error) {
	return v.d.findLeaveRequests(userID, start, end), nil
}

func (v *txView) ListLeaveRequestsByStatus(_ context.Context, status schedule.LeaveStatus) ([]schedule.LeaveRequest, error) {
	return v.d.listLeaveRequestsByStatus(status), nil
}

func (v *txView) SaveShift(_ context.Context, w schedule.WorkSchedule) error {
	return v.d.saveShift(w)
}

func (v *txView) GetShift(_ context.Context, id string) (schedule.WorkSchedule, error) {
	return v.d.getShift(id)
}

func (v *txView) DeleteShift(_ context.Context, id string) error {
	return v.d.deleteShift(id)
}

func (v *txView) FindShiftsByUserAndDate(_ context.Context, userID string, date time.Time) ([]schedule.WorkSchedule, error) {
	return v.d.findShifts(userID, date), nil
}

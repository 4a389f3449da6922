package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/schedule"
)

type LeaveInput struct {
	UserID    string
	Type      schedule.LeaveType
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// CreateLeaveRequest validates and stores a request. Types that don't require
// approval are stored already APPROVED.
func (s *Service) CreateLeaveRequest(ctx context.Context, in LeaveInput) (schedule.LeaveRequest, error) {
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return schedule.LeaveRequest{}, invalidInput("start and end dates are required")
	}
	requiresApproval, err := s.engine.RequiresApproval(in.Type)
	if err != nil {
		return schedule.LeaveRequest{}, err
	}

	var created schedule.LeaveRequest
	err = s.forUser(ctx, in.UserID, func(tx schedule.Store) error {
		if _, err := tx.GetUser(ctx, in.UserID); err != nil {
			return err
		}

		now := s.clock.Now()
		req := schedule.NewLeaveRequest(uuid.NewString(), in.UserID, in.Type, in.StartDate, in.EndDate, in.Reason, requiresApproval, now)

		// overlap needs the request's own range, the balance needs the whole year
		span := req.Period().Span(schedule.YearOf(schedule.TodayFor(now, req.StartDate)))
		existing, err := tx.FindLeaveRequestsByUserAndDateRange(ctx, in.UserID, span.Start, span.End)
		if err != nil {
			return err
		}
		if err := s.engine.ValidateLeaveRequest(req, existing); err != nil {
			return err
		}
		if err := tx.SaveLeaveRequest(ctx, req); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"user_id": in.UserID, "leave_type": in.Type}).
			WithError(err).Warn("leave request rejected")
		return schedule.LeaveRequest{}, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    created.UserID,
		"leave_id":   created.ID,
		"leave_type": created.Type,
		"status":     created.Status,
	}).Info("leave request created")
	return created, nil
}

func (s *Service) ApproveLeaveRequest(ctx context.Context, id, approverID, comments string) (schedule.LeaveRequest, error) {
	return s.transition(ctx, id, "approve", func(r *schedule.LeaveRequest, now time.Time) error {
		return r.Approve(approverID, comments, now)
	})
}

func (s *Service) RejectLeaveRequest(ctx context.Context, id, approverID, comments string) (schedule.LeaveRequest, error) {
	return s.transition(ctx, id, "reject", func(r *schedule.LeaveRequest, now time.Time) error {
		return r.Reject(approverID, comments, now)
	})
}

func (s *Service) CancelLeaveRequest(ctx context.Context, id string) (schedule.LeaveRequest, error) {
	return s.transition(ctx, id, "cancel", func(r *schedule.LeaveRequest, now time.Time) error {
		return r.Cancel(now)
	})
}

// transition reloads the request inside the transaction so two decisions on
// the same request cannot both succeed.
func (s *Service) transition(ctx context.Context, id, action string, apply func(*schedule.LeaveRequest, time.Time) error) (schedule.LeaveRequest, error) {
	current, err := s.store.GetLeaveRequest(ctx, id)
	if err != nil {
		return schedule.LeaveRequest{}, err
	}

	var out schedule.LeaveRequest
	err = s.forUser(ctx, current.UserID, func(tx schedule.Store) error {
		req, err := tx.GetLeaveRequest(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(&req, s.clock.Now()); err != nil {
			return err
		}
		if err := tx.SaveLeaveRequest(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return schedule.LeaveRequest{}, err
	}

	s.log.WithFields(logrus.Fields{"leave_id": id, "action": action, "status": out.Status}).Info("leave request updated")
	return out, nil
}

func (s *Service) GetLeaveRequest(ctx context.Context, id string) (schedule.LeaveRequest, error) {
	return s.store.GetLeaveRequest(ctx, id)
}

// ListLeaveRequests returns the user's requests intersecting [from, to].
func (s *Service) ListLeaveRequests(ctx context.Context, userID string, from, to time.Time) ([]schedule.LeaveRequest, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.FindLeaveRequestsByUserAndDateRange(ctx, userID, from, to)
}

// PendingLeaveRequests is the approval queue.
func (s *Service) PendingLeaveRequests(ctx context.Context) ([]schedule.LeaveRequest, error) {
	return s.store.ListLeaveRequestsByStatus(ctx, schedule.LeavePending)
}

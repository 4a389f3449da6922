package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/schedule"
)

type ShiftInput struct {
	UserID      string
	SkillPathID string
	Date        time.Time
	TimeRange   schedule.TimeRange
	Notes       string
}

func (s *Service) CreateShift(ctx context.Context, in ShiftInput) (schedule.WorkSchedule, error) {
	if in.TimeRange.IsZero() || in.Date.IsZero() {
		return schedule.WorkSchedule{}, invalidInput("date and time range are required")
	}

	var created schedule.WorkSchedule
	err := s.forUser(ctx, in.UserID, func(tx schedule.Store) error {
		now := s.clock.Now()
		candidate := schedule.WorkSchedule{
			ID:          uuid.NewString(),
			UserID:      in.UserID,
			SkillPathID: in.SkillPathID,
			Date:        schedule.StartOfDay(in.Date),
			TimeRange:   in.TimeRange,
			Notes:       in.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.validateShift(ctx, tx, candidate); err != nil {
			return err
		}
		if err := tx.SaveShift(ctx, candidate); err != nil {
			return err
		}
		created = candidate
		return nil
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"user_id": in.UserID, "date": schedule.FormatDate(in.Date)}).
			WithError(err).Warn("shift rejected")
		return schedule.WorkSchedule{}, err
	}

	s.log.WithFields(logrus.Fields{"user_id": created.UserID, "shift_id": created.ID}).Info("shift created")
	return created, nil
}

// UpdateShift moves or resizes a shift. The user cannot change.
func (s *Service) UpdateShift(ctx context.Context, id string, in ShiftInput) (schedule.WorkSchedule, error) {
	if in.TimeRange.IsZero() || in.Date.IsZero() {
		return schedule.WorkSchedule{}, invalidInput("date and time range are required")
	}
	current, err := s.store.GetShift(ctx, id)
	if err != nil {
		return schedule.WorkSchedule{}, err
	}

	var updated schedule.WorkSchedule
	err = s.forUser(ctx, current.UserID, func(tx schedule.Store) error {
		w, err := tx.GetShift(ctx, id)
		if err != nil {
			return err
		}
		w.SkillPathID = in.SkillPathID
		w.Date = schedule.StartOfDay(in.Date)
		w.TimeRange = in.TimeRange
		w.Notes = in.Notes
		w.UpdatedAt = s.clock.Now()

		if err := s.validateShift(ctx, tx, w); err != nil {
			return err
		}
		if err := tx.SaveShift(ctx, w); err != nil {
			return err
		}
		updated = w
		return nil
	})
	if err != nil {
		return schedule.WorkSchedule{}, err
	}
	return updated, nil
}

func (s *Service) validateShift(ctx context.Context, tx schedule.Store, candidate schedule.WorkSchedule) error {
	user, err := tx.GetUser(ctx, candidate.UserID)
	if err != nil {
		return err
	}
	existing, err := tx.FindShiftsByUserAndDate(ctx, candidate.UserID, candidate.Date)
	if err != nil {
		return err
	}
	return s.engine.ValidateWorkSchedule(candidate, existing, user.SkillPathIDs)
}

func (s *Service) DeleteShift(ctx context.Context, id string) error {
	current, err := s.store.GetShift(ctx, id)
	if err != nil {
		return err
	}
	return s.forUser(ctx, current.UserID, func(tx schedule.Store) error {
		return tx.DeleteShift(ctx, id)
	})
}

func (s *Service) ListShifts(ctx context.Context, userID string, date time.Time) ([]schedule.WorkSchedule, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.FindShiftsByUserAndDate(ctx, userID, date)
}

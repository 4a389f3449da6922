package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/schedule"
)

type AvailabilityInput struct {
	UserID     string
	Date       time.Time
	TimeRange  schedule.TimeRange
	Recurrence *schedule.RecurrencePattern
}

// CreateAvailability validates the window against the user's windows in the
// same ISO week and stores it. The employment type is taken from the user.
func (s *Service) CreateAvailability(ctx context.Context, in AvailabilityInput) (schedule.Availability, error) {
	if in.TimeRange.IsZero() || in.Date.IsZero() {
		return schedule.Availability{}, invalidInput("date and time range are required")
	}

	var created schedule.Availability
	err := s.forUser(ctx, in.UserID, func(tx schedule.Store) error {
		user, err := tx.GetUser(ctx, in.UserID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		candidate := schedule.Availability{
			ID:             uuid.NewString(),
			UserID:         user.ID,
			EmploymentType: user.EmploymentType,
			TimeRange:      in.TimeRange,
			Date:           in.Date,
			Recurrence:     in.Recurrence,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.validateAvailability(ctx, tx, candidate); err != nil {
			return err
		}
		if err := tx.SaveAvailability(ctx, candidate); err != nil {
			return err
		}
		created = candidate
		return nil
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"user_id": in.UserID, "date": schedule.FormatDate(in.Date)}).
			WithError(err).Warn("availability rejected")
		return schedule.Availability{}, err
	}

	s.log.WithFields(logrus.Fields{"user_id": created.UserID, "availability_id": created.ID}).Info("availability created")
	return created, nil
}

// UpdateAvailability replaces the window's date, time range and recurrence.
// The new values are validated as if the window were submitted fresh.
func (s *Service) UpdateAvailability(ctx context.Context, id string, in AvailabilityInput) (schedule.Availability, error) {
	if in.TimeRange.IsZero() || in.Date.IsZero() {
		return schedule.Availability{}, invalidInput("date and time range are required")
	}
	current, err := s.store.GetAvailability(ctx, id)
	if err != nil {
		return schedule.Availability{}, err
	}

	var updated schedule.Availability
	err = s.forUser(ctx, current.UserID, func(tx schedule.Store) error {
		a, err := tx.GetAvailability(ctx, id)
		if err != nil {
			return err
		}
		a.Date = in.Date
		a.TimeRange = in.TimeRange
		a.Recurrence = in.Recurrence
		a.UpdatedAt = s.clock.Now()

		if err := s.validateAvailability(ctx, tx, a); err != nil {
			return err
		}
		if err := tx.SaveAvailability(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return schedule.Availability{}, err
	}
	return updated, nil
}

func (s *Service) validateAvailability(ctx context.Context, tx schedule.Store, candidate schedule.Availability) error {
	if r := candidate.Recurrence; r != nil && schedule.DayBefore(r.Until(), candidate.Date) {
		return &schedule.RecurrencePatternError{
			Field:  "until",
			Reason: "must not be before the availability date " + schedule.FormatDate(candidate.Date),
		}
	}
	week := schedule.WeekOf(candidate.Date)
	existing, err := tx.FindAvailabilitiesByUserAndDateRange(ctx, candidate.UserID, week.Start, week.End)
	if err != nil {
		return err
	}
	return s.engine.ValidateAvailability(candidate, existing)
}

func (s *Service) DeleteAvailability(ctx context.Context, id string) error {
	current, err := s.store.GetAvailability(ctx, id)
	if err != nil {
		return err
	}
	return s.forUser(ctx, current.UserID, func(tx schedule.Store) error {
		return tx.DeleteAvailability(ctx, id)
	})
}

func (s *Service) GetAvailability(ctx context.Context, id string) (schedule.Availability, error) {
	return s.store.GetAvailability(ctx, id)
}

// ListAvailabilities returns windows anchored in [from, to].
func (s *Service) ListAvailabilities(ctx context.Context, userID string, from, to time.Time) ([]schedule.Availability, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.FindAvailabilitiesByUserAndDateRange(ctx, userID, from, to)
}

// Occurrences expands one availability over [from, to].
func (s *Service) Occurrences(ctx context.Context, id string, from, to time.Time) ([]time.Time, error) {
	if schedule.CalendarDaysInclusive(from, to) > MaxOccurrenceDays {
		return nil, invalidInput("occurrence range may span at most %d days", MaxOccurrenceDays)
	}
	a, err := s.store.GetAvailability(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.Occurrences(from, to), nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Range caps for one call. Generation runs under the user's lock and a write
// transaction.
const (
	MaxGenerationDays = 366
	MaxOccurrenceDays = 366
)

// GenerateAvailabilities fills [start, end) from the user's working hours.
// Nothing is saved unless every generated window passes validation.
func (s *Service) GenerateAvailabilities(ctx context.Context, userID string, start, end time.Time) ([]schedule.Availability, error) {
	if schedule.DaysBetween(start, end) > MaxGenerationDays {
		return nil, invalidInput("generation range may span at most %d days", MaxGenerationDays)
	}
	var generated []schedule.Availability
	err := s.forUser(ctx, userID, func(tx schedule.Store) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.WorkingHours == nil {
			return invalidInput("user %s has no working hours", userID)
		}

		span := schedule.WeekOf(start).Span(schedule.WeekOf(end))
		existing, err := tx.FindAvailabilitiesByUserAndDateRange(ctx, userID, span.Start, span.End)
		if err != nil {
			return err
		}

		params := schedule.GenerationParams{UserID: user.ID, WorkingHours: *user.WorkingHours}
		out, err := s.engine.GenerateAvailabilities(user.EmploymentType, start, end, params, existing)
		if err != nil {
			return err
		}
		for _, a := range out {
			if err := tx.SaveAvailability(ctx, a); err != nil {
				return err
			}
		}
		generated = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "count": len(generated)}).Info("availabilities generated")
	return generated, nil
}

// GenerationReport summarizes one batch run.
type GenerationReport struct {
	Users     int
	Generated int
	Failed    map[string]error
}

// GenerateForEmploymentContracts runs generation for every employment
// contract user with working hours. A failing user is logged and skipped.
func (s *Service) GenerateForEmploymentContracts(ctx context.Context, start, end time.Time) (GenerationReport, error) {
	report := GenerationReport{Failed: make(map[string]error)}

	users, err := s.store.ListUsersByEmploymentType(ctx, schedule.EmploymentContract)
	if err != nil {
		return report, err
	}

	for _, u := range users {
		if u.WorkingHours == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Users++

		out, err := s.GenerateAvailabilities(ctx, u.ID, start, end)
		if err != nil {
			report.Failed[u.ID] = err
			s.log.WithField("user_id", u.ID).WithError(err).Error("availability generation failed")
			continue
		}
		report.Generated += len(out)
	}
	return report, nil
}

// NextWorkWeek returns [Monday, Saturday) of the ISO week after now's.
func NextWorkWeek(now time.Time) (start, end time.Time) {
	start = schedule.WeekOf(now).Start.AddDate(0, 0, 7)
	return start, start.AddDate(0, 0, 5)
}

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/workforce-engine/schedule"
)

type CreateUserInput struct {
	ID             string
	Name           string
	Email          string
	EmploymentType schedule.EmploymentType
	WorkingHours   *schedule.TimeRange
	SkillPathIDs   []string
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (schedule.User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return schedule.User{}, invalidInput("name is required")
	}
	t, err := schedule.ParseEmploymentType(string(in.EmploymentType))
	if err != nil {
		return schedule.User{}, invalidInput("%v", err)
	}

	u := schedule.User{
		ID:             in.ID,
		Name:           in.Name,
		Email:          in.Email,
		EmploymentType: t,
		WorkingHours:   in.WorkingHours,
		SkillPathIDs:   append([]string(nil), in.SkillPathIDs...),
		CreatedAt:      s.clock.Now(),
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return schedule.User{}, err
	}
	s.log.WithField("user_id", u.ID).WithField("employment_type", u.EmploymentType).Info("user created")
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (schedule.User, error) {
	return s.store.GetUser(ctx, id)
}

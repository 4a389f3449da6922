/*
engine.go - Scheduling rule engine facade

PURPOSE:
  The single entry point callers use to validate availabilities, leave
  requests and shifts. It picks the strategy for the candidate's type tag and
  delegates; it never fetches data and never writes.

REGISTRIES:
  Both registries are plain maps built once in New and never modified, so an
  Engine is safe for concurrent use.

    employment type -> first availability.Strategy whose Supports() accepts it
    leave type      -> first leave.TypeStrategy whose Type() matches

  A type with no strategy yields NoStrategyFound, logged at error level: it is
  a wiring bug, not bad input.

EXAMPLE:
  eng := engine.Default(schedule.SystemClock{}, logger)
  if err := eng.ValidateAvailability(candidate, weekWindows); err != nil {
      // errors.Is(err, schedule.ErrInvalidAvailability)
  }

SEE ALSO:
  - factory/rules.go: builds an Engine from a JSON rule-set
  - service/: fetches existing data and calls the engine inside a transaction
*/
package engine

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/availability"
	"github.com/warp/workforce-engine/leave"
	"github.com/warp/workforce-engine/schedule"
	"github.com/warp/workforce-engine/shift"
)

type Engine struct {
	availability map[schedule.EmploymentType]availability.Strategy
	leave        map[schedule.LeaveType]leave.TypeStrategy
	shifts       *shift.Validator
	log          logrus.FieldLogger
}

type Option func(*Engine)

func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

func WithShiftValidator(v *shift.Validator) Option {
	return func(e *Engine) { e.shifts = v }
}

func New(availabilityStrategies []availability.Strategy, leaveStrategies []leave.TypeStrategy, opts ...Option) *Engine {
	e := &Engine{
		availability: make(map[schedule.EmploymentType]availability.Strategy),
		leave:        make(map[schedule.LeaveType]leave.TypeStrategy),
		shifts:       shift.NewValidator(),
		log:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, t := range schedule.EmploymentTypes() {
		for _, s := range availabilityStrategies {
			if s.Supports(t) {
				e.availability[t] = s
				break
			}
		}
	}
	for _, s := range leaveStrategies {
		if _, ok := e.leave[s.Type()]; !ok {
			e.leave[s.Type()] = s
		}
	}
	return e
}

// Default wires the built-in strategies with the default limits.
func Default(clock schedule.Clock, log logrus.FieldLogger) *Engine {
	return New(
		availability.Strategies(schedule.DefaultRuleCatalog(), clock),
		leave.Strategies(clock, nil),
		WithLogger(log),
	)
}

// =============================================================================
// AVAILABILITY
// =============================================================================

func (e *Engine) availabilityStrategy(t schedule.EmploymentType) (availability.Strategy, error) {
	s, ok := e.availability[t]
	if !ok {
		return nil, e.noStrategy("employment type", string(t))
	}
	return s, nil
}

// ValidateAvailability checks candidate against the user's existing windows
// for the candidate's ISO week.
func (e *Engine) ValidateAvailability(candidate schedule.Availability, existing []schedule.Availability) error {
	s, err := e.availabilityStrategy(candidate.EmploymentType)
	if err != nil {
		return err
	}
	return s.Validate(candidate, existing)
}

// GenerateAvailabilities expands working hours into validated windows over
// [start, end). Only employment contracts generate anything.
func (e *Engine) GenerateAvailabilities(
	t schedule.EmploymentType,
	start, end time.Time,
	params schedule.GenerationParams,
	existing []schedule.Availability,
) ([]schedule.Availability, error) {
	s, err := e.availabilityStrategy(t)
	if err != nil {
		return nil, err
	}
	return s.GenerateAvailabilities(start, end, params, existing)
}

// =============================================================================
// LEAVE
// =============================================================================

func (e *Engine) LeaveStrategy(t schedule.LeaveType) (leave.TypeStrategy, error) {
	s, ok := e.leave[t]
	if !ok {
		return nil, e.noStrategy("leave type", string(t))
	}
	return s, nil
}

func (e *Engine) ValidateLeaveRequest(req schedule.LeaveRequest, existing []schedule.LeaveRequest) error {
	s, err := e.LeaveStrategy(req.Type)
	if err != nil {
		return err
	}
	return s.ValidateRequest(req, existing)
}

func (e *Engine) RequiresApproval(t schedule.LeaveType) (bool, error) {
	s, err := e.LeaveStrategy(t)
	if err != nil {
		return false, err
	}
	return s.RequiresApproval(), nil
}

// =============================================================================
// SHIFTS
// =============================================================================

func (e *Engine) ValidateWorkSchedule(candidate schedule.WorkSchedule, existing []schedule.WorkSchedule, skillPaths []string) error {
	return e.shifts.Validate(candidate, existing, skillPaths)
}

func (e *Engine) noStrategy(kind, t string) error {
	err := &schedule.NoStrategyFoundError{Kind: kind, Type: t}
	e.log.WithFields(logrus.Fields{"kind": kind, "type": t}).Error("no strategy registered")
	return err
}

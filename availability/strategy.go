/*
strategy.go - Availability validation per employment type

PURPOSE:
  Each employment type gets one Strategy. The engine picks the strategy whose
  Supports() accepts the candidate's employment type and calls Validate with
  the employee's existing windows for the candidate's ISO week.

VALIDATION ORDER (fail-fast):
  1. Daily limit    - candidate duration <= max daily hours
  2. Weekly limit   - existing windows in the ISO week + candidate <= max weekly hours
  3. Notice period  - now + minimum notice <= candidate date
  4. Weekend        - EMPLOYMENT_CONTRACT only: Saturday/Sunday rejected
  5. Overlap        - no existing window on the same day may overlap

GENERATION:
  Only the employment contract generates availabilities: one per Mon-Fri day
  in [start, end), each validated against the existing and already generated
  windows of its ISO week. The other strategies return nothing.

SEE ALSO:
  - schedule/employment.go: the limits
  - engine/engine.go: strategy dispatch
*/
package availability

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/workforce-engine/schedule"
)

// Strategy validates and generates availabilities for one employment type.
type Strategy interface {
	Supports(t schedule.EmploymentType) bool
	Validate(candidate schedule.Availability, existing []schedule.Availability) error
	GenerateAvailabilities(start, end time.Time, params schedule.GenerationParams, existing []schedule.Availability) ([]schedule.Availability, error)
}

// =============================================================================
// RULE CHECKER - Shared checks, parameterised by employment type
// =============================================================================

type ruleChecker struct {
	employmentType schedule.EmploymentType
	rules          schedule.EmploymentRules
	clock          schedule.Clock
	blockWeekends  bool
	detector       schedule.ConflictDetector
}

func (c ruleChecker) Supports(t schedule.EmploymentType) bool {
	return t == c.employmentType
}

func (c ruleChecker) Validate(candidate schedule.Availability, existing []schedule.Availability) error {
	label := c.employmentType.Label()

	// 1. Daily limit
	if candidate.DurationMinutes() > c.rules.MaxDailyMinutes() {
		return schedule.InvalidAvailability(schedule.ReasonDailyLimit,
			"availability of %s hours exceeds the daily limit of %s hours for %s",
			hours(candidate.DurationMinutes()), c.rules.MaxDailyHours, label)
	}

	// 2. Weekly limit
	week := schedule.WeekOf(candidate.Date)
	weekly := candidate.DurationMinutes()
	for _, a := range existing {
		if a.ID == candidate.ID || a.UserID != candidate.UserID || !week.Contains(a.Date) {
			continue
		}
		weekly += a.DurationMinutes()
	}
	if weekly > c.rules.MaxWeeklyMinutes() {
		return schedule.InvalidAvailability(schedule.ReasonWeeklyLimit,
			"weekly total of %s hours exceeds the limit of %s hours for %s",
			hours(weekly), c.rules.MaxWeeklyHours, label)
	}

	// 3. Notice period
	if c.clock.Now().Add(c.rules.MinimumNotice()).After(candidate.Date) {
		return schedule.InvalidAvailability(schedule.ReasonNoticePeriod,
			"availability must be submitted at least %d hours in advance for %s",
			c.rules.MinimumNoticeHours, label)
	}

	// 4. Weekend
	if c.blockWeekends && schedule.IsWeekend(candidate.Date) {
		return schedule.InvalidAvailability(schedule.ReasonWeekendWork,
			"weekend availability is not allowed for %s", label)
	}

	// 5. Same-day overlap
	for _, a := range existing {
		if a.ID == candidate.ID || a.UserID != candidate.UserID || !schedule.SameDay(a.Date, candidate.Date) {
			continue
		}
		if c.detector.Overlaps(a.TimeRange, candidate.TimeRange) {
			return schedule.InvalidAvailability(schedule.ReasonOverlap,
				"availability %s overlaps existing window %s on %s",
				candidate.TimeRange, a.TimeRange, schedule.FormatDate(a.Date))
		}
	}

	return nil
}

func (c ruleChecker) GenerateAvailabilities(time.Time, time.Time, schedule.GenerationParams, []schedule.Availability) ([]schedule.Availability, error) {
	return []schedule.Availability{}, nil
}

func hours(minutes int) string {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Round(2).String()
}

// =============================================================================
// STRATEGIES
// =============================================================================

// EmploymentContract blocks weekends and generates weekday availabilities.
type EmploymentContract struct {
	ruleChecker
}

func NewEmploymentContract(rules schedule.EmploymentRules, clock schedule.Clock) *EmploymentContract {
	return &EmploymentContract{ruleChecker{
		employmentType: schedule.EmploymentContract,
		rules:          rules,
		clock:          clock,
		blockWeekends:  true,
	}}
}

// GenerateAvailabilities produces one window per weekday in [start, end).
// The first invalid day aborts generation with its error.
func (s *EmploymentContract) GenerateAvailabilities(
	start, end time.Time,
	params schedule.GenerationParams,
	existing []schedule.Availability,
) ([]schedule.Availability, error) {
	now := s.clock.Now()
	generated := []schedule.Availability{}

	// weekly and same-day checks never look outside the candidate's week
	byWeek := make(map[string][]schedule.Availability)
	weekKey := func(t time.Time) string { return schedule.FormatDate(schedule.WeekOf(t).Start) }
	for _, a := range existing {
		k := weekKey(a.Date)
		byWeek[k] = append(byWeek[k], a)
	}

	for day := schedule.StartOfDay(start); schedule.DayBefore(day, end); day = day.AddDate(0, 0, 1) {
		if schedule.IsWeekend(day) {
			continue
		}
		a := schedule.Availability{
			ID:             uuid.NewString(),
			UserID:         params.UserID,
			EmploymentType: schedule.EmploymentContract,
			TimeRange:      params.WorkingHours,
			Date:           day,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		k := weekKey(day)
		if err := s.Validate(a, byWeek[k]); err != nil {
			return nil, fmt.Errorf("generate %s: %w", schedule.FormatDate(day), err)
		}
		byWeek[k] = append(byWeek[k], a)
		generated = append(generated, a)
	}
	return generated, nil
}

// CivilContract allows weekends and never generates.
type CivilContract struct {
	ruleChecker
}

func NewCivilContract(rules schedule.EmploymentRules, clock schedule.Clock) *CivilContract {
	return &CivilContract{ruleChecker{
		employmentType: schedule.CivilContract,
		rules:          rules,
		clock:          clock,
	}}
}

// Contractor (B2B) allows weekends and never generates.
type Contractor struct {
	ruleChecker
}

func NewContractor(rules schedule.EmploymentRules, clock schedule.Clock) *Contractor {
	return &Contractor{ruleChecker{
		employmentType: schedule.Contractor,
		rules:          rules,
		clock:          clock,
	}}
}

// Strategies builds one strategy per employment type present in catalog.
func Strategies(catalog schedule.RuleCatalog, clock schedule.Clock) []Strategy {
	var out []Strategy
	for _, t := range catalog.Types() {
		rules, _ := catalog.Lookup(t)
		switch t {
		case schedule.EmploymentContract:
			out = append(out, NewEmploymentContract(rules, clock))
		case schedule.CivilContract:
			out = append(out, NewCivilContract(rules, clock))
		case schedule.Contractor:
			out = append(out, NewContractor(rules, clock))
		}
	}
	return out
}

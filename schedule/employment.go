/*
employment.go - Employment types and their labor-rule limits

PURPOSE:
  The rule catalog maps each employment type to the numeric limits the
  availability strategies enforce. Hours are decimals so fractional limits
  ("7.5 hours a day") survive a round trip through the JSON rule-set.

DEFAULT LIMITS:
  ┌─────────────────────┬───────────┬────────────┬──────────────┐
  │ Employment type     │ Max daily │ Max weekly │ Min notice   │
  ├─────────────────────┼───────────┼────────────┼──────────────┤
  │ EMPLOYMENT_CONTRACT │ 8h        │ 40h        │ 24h          │
  │ CIVIL_CONTRACT      │ 12h       │ 40h        │ 48h          │
  │ CONTRACTOR (B2B)    │ 12h       │ 60h        │ 24h          │
  └─────────────────────┴───────────┴────────────┴──────────────┘

SEE ALSO:
  - factory/rules.go: overrides these limits from JSON
  - availability/: strategies consuming the catalog
*/
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type EmploymentType string

const (
	EmploymentContract EmploymentType = "EMPLOYMENT_CONTRACT"
	CivilContract      EmploymentType = "CIVIL_CONTRACT"
	Contractor         EmploymentType = "CONTRACTOR"
)

// EmploymentTypes lists every known employment type in a stable order.
func EmploymentTypes() []EmploymentType {
	return []EmploymentType{EmploymentContract, CivilContract, Contractor}
}

// ParseEmploymentType accepts the canonical names and "B2B" for CONTRACTOR.
func ParseEmploymentType(s string) (EmploymentType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(EmploymentContract):
		return EmploymentContract, nil
	case string(CivilContract):
		return CivilContract, nil
	case string(Contractor), "B2B":
		return Contractor, nil
	}
	return "", fmt.Errorf("unknown employment type %q", s)
}

// Label is the human wording used in rule-violation messages.
func (t EmploymentType) Label() string {
	switch t {
	case EmploymentContract:
		return "employment contract"
	case CivilContract:
		return "civil contract"
	case Contractor:
		return "B2B contract"
	}
	return string(t)
}

// =============================================================================
// RULES
// =============================================================================

type EmploymentRules struct {
	MaxDailyHours      decimal.Decimal
	MaxWeeklyHours     decimal.Decimal
	MinimumNoticeHours int
}

var minutesPerHour = decimal.NewFromInt(60)

func (r EmploymentRules) MaxDailyMinutes() int {
	return int(r.MaxDailyHours.Mul(minutesPerHour).IntPart())
}

func (r EmploymentRules) MaxWeeklyMinutes() int {
	return int(r.MaxWeeklyHours.Mul(minutesPerHour).IntPart())
}

func (r EmploymentRules) MinimumNotice() time.Duration {
	return time.Duration(r.MinimumNoticeHours) * time.Hour
}

// Validate rejects non-positive limits and negative notice.
func (r EmploymentRules) Validate() error {
	if !r.MaxDailyHours.IsPositive() {
		return fmt.Errorf("max daily hours must be positive, got %s", r.MaxDailyHours)
	}
	if !r.MaxWeeklyHours.IsPositive() {
		return fmt.Errorf("max weekly hours must be positive, got %s", r.MaxWeeklyHours)
	}
	if r.MaxDailyHours.GreaterThan(decimal.NewFromInt(24)) {
		return fmt.Errorf("max daily hours cannot exceed 24, got %s", r.MaxDailyHours)
	}
	if r.MinimumNoticeHours < 0 {
		return fmt.Errorf("minimum notice hours cannot be negative, got %d", r.MinimumNoticeHours)
	}
	return nil
}

// =============================================================================
// CATALOG
// =============================================================================

// RuleCatalog is a read-only lookup built once at startup.
type RuleCatalog struct {
	rules map[EmploymentType]EmploymentRules
}

// NewRuleCatalog copies rules so later changes to the map don't leak in.
func NewRuleCatalog(rules map[EmploymentType]EmploymentRules) (RuleCatalog, error) {
	out := make(map[EmploymentType]EmploymentRules, len(rules))
	for t, r := range rules {
		if err := r.Validate(); err != nil {
			return RuleCatalog{}, fmt.Errorf("%s: %w", t, err)
		}
		out[t] = r
	}
	return RuleCatalog{rules: out}, nil
}

func (c RuleCatalog) Lookup(t EmploymentType) (EmploymentRules, bool) {
	r, ok := c.rules[t]
	return r, ok
}

// Types returns the employment types present in the catalog.
func (c RuleCatalog) Types() []EmploymentType {
	var out []EmploymentType
	for _, t := range EmploymentTypes() {
		if _, ok := c.rules[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func DefaultRuleCatalog() RuleCatalog {
	return RuleCatalog{rules: map[EmploymentType]EmploymentRules{
		EmploymentContract: {
			MaxDailyHours:      decimal.NewFromInt(8),
			MaxWeeklyHours:     decimal.NewFromInt(40),
			MinimumNoticeHours: 24,
		},
		CivilContract: {
			MaxDailyHours:      decimal.NewFromInt(12),
			MaxWeeklyHours:     decimal.NewFromInt(40),
			MinimumNoticeHours: 48,
		},
		Contractor: {
			MaxDailyHours:      decimal.NewFromInt(12),
			MaxWeeklyHours:     decimal.NewFromInt(60),
			MinimumNoticeHours: 24,
		},
	}}
}

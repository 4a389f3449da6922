/*
Package factory provides JSON to Go rule-set conversion.

PURPOSE:
  Converts a JSON rule-set into the employment rule catalog and leave limits
  the engine runs with, so limits can change per deployment without a
  rebuild. Anything the JSON leaves out keeps its built-in default.

JSON SCHEMA:
  {
    "employment_types": {
      "EMPLOYMENT_CONTRACT": {"max_daily_hours": 8, "max_weekly_hours": 40, "minimum_notice_hours": 24},
      "B2B":                 {"max_daily_hours": "10.5"}
    },
    "leave_types": {
      "HOLIDAY": {"max_days": 26, "notice_days": 7}
    }
  }

  Hours are decimals and may be given as numbers or strings.

USAGE:
  rules, err := factory.NewRuleFactory().LoadFile("rules.json")
  eng := rules.Engine(schedule.SystemClock{}, logger)

SEE ALSO:
  - schedule/employment.go: EmploymentRules and the default catalog
  - leave/strategy.go: Limits and the default leave limits
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/availability"
	"github.com/warp/workforce-engine/engine"
	"github.com/warp/workforce-engine/leave"
	"github.com/warp/workforce-engine/schedule"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type RuleSetJSON struct {
	EmploymentTypes map[string]EmploymentRulesJSON `json:"employment_types,omitempty"`
	LeaveTypes      map[string]LeaveLimitsJSON     `json:"leave_types,omitempty"`
}

type EmploymentRulesJSON struct {
	MaxDailyHours      *decimal.Decimal `json:"max_daily_hours,omitempty"`
	MaxWeeklyHours     *decimal.Decimal `json:"max_weekly_hours,omitempty"`
	MinimumNoticeHours *int             `json:"minimum_notice_hours,omitempty"`
}

type LeaveLimitsJSON struct {
	MaxDays    *int `json:"max_days,omitempty"`
	NoticeDays *int `json:"notice_days,omitempty"`
}

// =============================================================================
// RULE SET
// =============================================================================

// RuleSet is the parsed, validated configuration.
type RuleSet struct {
	Catalog     schedule.RuleCatalog
	LeaveLimits map[schedule.LeaveType]leave.Limits
}

// Engine wires a rule engine running with these limits.
func (rs *RuleSet) Engine(clock schedule.Clock, log logrus.FieldLogger) *engine.Engine {
	return engine.New(
		availability.Strategies(rs.Catalog, clock),
		leave.Strategies(clock, rs.LeaveLimits),
		engine.WithLogger(log),
	)
}

// =============================================================================
// RULE FACTORY
// =============================================================================

type RuleFactory struct{}

func NewRuleFactory() *RuleFactory {
	return &RuleFactory{}
}

// Defaults returns the built-in rule-set.
func (f *RuleFactory) Defaults() *RuleSet {
	return &RuleSet{Catalog: schedule.DefaultRuleCatalog(), LeaveLimits: leave.DefaultLimits()}
}

// LoadFile reads a rule-set from disk. An empty path yields the defaults.
func (f *RuleFactory) LoadFile(path string) (*RuleSet, error) {
	if path == "" {
		return f.Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return f.ParseRules(string(data))
}

// ParseRules parses a JSON string into a RuleSet.
func (f *RuleFactory) ParseRules(jsonStr string) (*RuleSet, error) {
	var rj RuleSetJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rules JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON overlays rj onto the defaults.
func (f *RuleFactory) FromJSON(rj RuleSetJSON) (*RuleSet, error) {
	defaults := schedule.DefaultRuleCatalog()
	rules := make(map[schedule.EmploymentType]schedule.EmploymentRules)
	for _, t := range defaults.Types() {
		rules[t], _ = defaults.Lookup(t)
	}

	for name, ej := range rj.EmploymentTypes {
		t, err := schedule.ParseEmploymentType(name)
		if err != nil {
			return nil, err
		}
		r := rules[t]
		if ej.MaxDailyHours != nil {
			r.MaxDailyHours = *ej.MaxDailyHours
		}
		if ej.MaxWeeklyHours != nil {
			r.MaxWeeklyHours = *ej.MaxWeeklyHours
		}
		if ej.MinimumNoticeHours != nil {
			r.MinimumNoticeHours = *ej.MinimumNoticeHours
		}
		rules[t] = r
	}

	catalog, err := schedule.NewRuleCatalog(rules)
	if err != nil {
		return nil, fmt.Errorf("invalid employment rules: %w", err)
	}

	limits := leave.DefaultLimits()
	for name, lj := range rj.LeaveTypes {
		t, err := schedule.ParseLeaveType(name)
		if err != nil {
			return nil, err
		}
		l := limits[t]
		if lj.MaxDays != nil {
			l.MaxDuration = *lj.MaxDays
		}
		if lj.NoticeDays != nil {
			l.NoticeDays = *lj.NoticeDays
		}
		if l.MaxDuration < 1 {
			return nil, fmt.Errorf("invalid leave limits for %s: max_days must be at least 1", t)
		}
		if l.NoticeDays < 0 {
			return nil, fmt.Errorf("invalid leave limits for %s: notice_days cannot be negative", t)
		}
		limits[t] = l
	}

	return &RuleSet{Catalog: catalog, LeaveLimits: limits}, nil
}

// ToJSON converts a RuleSet back to its full JSON form.
func (f *RuleFactory) ToJSON(rs *RuleSet) RuleSetJSON {
	rj := RuleSetJSON{
		EmploymentTypes: make(map[string]EmploymentRulesJSON),
		LeaveTypes:      make(map[string]LeaveLimitsJSON),
	}
	for _, t := range rs.Catalog.Types() {
		r, _ := rs.Catalog.Lookup(t)
		daily, weekly, notice := r.MaxDailyHours, r.MaxWeeklyHours, r.MinimumNoticeHours
		rj.EmploymentTypes[string(t)] = EmploymentRulesJSON{
			MaxDailyHours:      &daily,
			MaxWeeklyHours:     &weekly,
			MinimumNoticeHours: &notice,
		}
	}
	for t, l := range rs.LeaveLimits {
		maxDays, notice := l.MaxDuration, l.NoticeDays
		rj.LeaveTypes[string(t)] = LeaveLimitsJSON{MaxDays: &maxDays, NoticeDays: &notice}
	}
	return rj
}

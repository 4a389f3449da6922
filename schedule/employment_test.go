package schedule_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/schedule"
)

func TestDefaultRuleCatalog(t *testing.T) {
	catalog := schedule.DefaultRuleCatalog()

	rules, ok := catalog.Lookup(schedule.EmploymentContract)
	require.True(t, ok)
	assert.Equal(t, 480, rules.MaxDailyMinutes())
	assert.Equal(t, 2400, rules.MaxWeeklyMinutes())
	assert.Equal(t, 24*time.Hour, rules.MinimumNotice())

	rules, ok = catalog.Lookup(schedule.Contractor)
	require.True(t, ok)
	assert.Equal(t, 24, rules.MinimumNoticeHours)

	assert.Len(t, catalog.Types(), 3)
}

func TestRuleCatalog_FractionalHours(t *testing.T) {
	catalog, err := schedule.NewRuleCatalog(map[schedule.EmploymentType]schedule.EmploymentRules{
		schedule.CivilContract: {
			MaxDailyHours:      decimal.RequireFromString("7.5"),
			MaxWeeklyHours:     decimal.RequireFromString("37.5"),
			MinimumNoticeHours: 12,
		},
	})
	require.NoError(t, err)

	rules, ok := catalog.Lookup(schedule.CivilContract)
	require.True(t, ok)
	assert.Equal(t, 450, rules.MaxDailyMinutes())
	assert.Equal(t, 2250, rules.MaxWeeklyMinutes())

	_, ok = catalog.Lookup(schedule.EmploymentContract)
	assert.False(t, ok)
}

func TestRuleCatalog_RejectsNonPositiveLimits(t *testing.T) {
	_, err := schedule.NewRuleCatalog(map[schedule.EmploymentType]schedule.EmploymentRules{
		schedule.Contractor: {MaxDailyHours: decimal.Zero, MaxWeeklyHours: decimal.NewFromInt(40)},
	})
	assert.Error(t, err)
}

func TestParseEmploymentType_B2BAlias(t *testing.T) {
	et, err := schedule.ParseEmploymentType("b2b")
	require.NoError(t, err)
	assert.Equal(t, schedule.Contractor, et)
	assert.Equal(t, "B2B contract", et.Label())
}

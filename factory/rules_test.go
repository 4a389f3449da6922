package factory_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/factory"
	"github.com/warp/workforce-engine/schedule"
)

func TestParseRules_OverlaysDefaults(t *testing.T) {
	// GIVEN: a rule-set touching one employment type and one leave type
	rs, err := factory.NewRuleFactory().ParseRules(`{
		"employment_types": {"B2B": {"max_daily_hours": "10.5"}},
		"leave_types": {"HOLIDAY": {"notice_days": 3}}
	}`)
	require.NoError(t, err)

	// THEN: the touched fields change, everything else keeps its default
	contractor, ok := rs.Catalog.Lookup(schedule.Contractor)
	require.True(t, ok)
	assert.Equal(t, 630, contractor.MaxDailyMinutes())
	assert.Equal(t, 3600, contractor.MaxWeeklyMinutes())
	assert.Equal(t, 24, contractor.MinimumNoticeHours)

	employee, ok := rs.Catalog.Lookup(schedule.EmploymentContract)
	require.True(t, ok)
	assert.Equal(t, 480, employee.MaxDailyMinutes())

	assert.Equal(t, 3, rs.LeaveLimits[schedule.Holiday].NoticeDays)
	assert.Equal(t, 26, rs.LeaveLimits[schedule.Holiday].MaxDuration)
}

func TestParseRules_RejectsBadInput(t *testing.T) {
	f := factory.NewRuleFactory()
	for name, input := range map[string]string{
		"unknown employment type": `{"employment_types": {"INTERN": {"max_daily_hours": 4}}}`,
		"zero daily hours":        `{"employment_types": {"CIVIL_CONTRACT": {"max_daily_hours": 0}}}`,
		"unknown leave type":      `{"leave_types": {"SABBATICAL": {"max_days": 90}}}`,
		"negative notice":         `{"leave_types": {"HOLIDAY": {"notice_days": -1}}}`,
		"not json":                `{`,
	} {
		_, err := f.ParseRules(input)
		assert.Error(t, err, name)
	}
}

func TestRuleSet_EngineUsesOverrides(t *testing.T) {
	// GIVEN: contractors need 72 hours notice
	rs, err := factory.NewRuleFactory().ParseRules(`{"employment_types": {"CONTRACTOR": {"minimum_notice_hours": 72}}}`)
	require.NoError(t, err)

	now := time.Date(2025, time.May, 29, 12, 0, 0, 0, time.UTC)
	logger, _ := test.NewNullLogger()
	eng := rs.Engine(schedule.FixedClock{At: now}, logger)

	// WHEN: submitting 48 hours ahead
	err = eng.ValidateAvailability(schedule.Availability{
		ID:             "a-1",
		UserID:         "emp-1",
		EmploymentType: schedule.Contractor,
		TimeRange:      schedule.MustTimeRange("09:00", "17:00"),
		Date:           now.Add(48 * time.Hour),
	}, nil)

	// THEN: the notice check uses the override
	require.ErrorIs(t, err, schedule.ErrInvalidAvailability)
	assert.Contains(t, err.Error(), "72 hours")
}

func TestLoadFile(t *testing.T) {
	f := factory.NewRuleFactory()

	rs, err := f.LoadFile("")
	require.NoError(t, err)
	assert.Len(t, rs.Catalog.Types(), 3)

	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"leave_types": {"PERSONAL_LEAVE": {"max_days": 6}}}`), 0o600))

	rs, err = f.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 6, rs.LeaveLimits[schedule.PersonalLeave].MaxDuration)

	_, err = f.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestToJSON_ParsesBack(t *testing.T) {
	f := factory.NewRuleFactory()
	rs, err := f.ParseRules(`{"employment_types": {"CIVIL_CONTRACT": {"max_weekly_hours": "37.5"}}}`)
	require.NoError(t, err)

	again, err := f.FromJSON(f.ToJSON(rs))
	require.NoError(t, err)

	civil, _ := again.Catalog.Lookup(schedule.CivilContract)
	assert.Equal(t, 2250, civil.MaxWeeklyMinutes())
}

package availability_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/availability"
	"github.com/warp/workforce-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// Thursday of the week before the one under test.
var now = time.Date(2025, time.May, 29, 12, 0, 0, 0, time.UTC)

// Monday 2025-06-02.
var monday = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

func rules(t schedule.EmploymentType) schedule.EmploymentRules {
	r, _ := schedule.DefaultRuleCatalog().Lookup(t)
	return r
}

func window(id string, et schedule.EmploymentType, day time.Time, start, end string) schedule.Availability {
	return schedule.Availability{
		ID:             id,
		UserID:         "emp-1",
		EmploymentType: et,
		TimeRange:      schedule.MustTimeRange(start, end),
		Date:           day,
	}
}

func reason(t *testing.T, err error) schedule.AvailabilityReason {
	t.Helper()
	var aerr *schedule.AvailabilityError
	require.True(t, errors.As(err, &aerr), "expected AvailabilityError, got %v", err)
	return aerr.Reason
}

// fullWeek returns Mon-Fri 09:00-17:00 windows: exactly 40 hours.
func fullWeek() []schedule.Availability {
	var out []schedule.Availability
	for i := 0; i < 5; i++ {
		out = append(out, window("w-"+string(rune('a'+i)), schedule.EmploymentContract, monday.AddDate(0, 0, i), "09:00", "17:00"))
	}
	return out
}

// =============================================================================
// CONTRACTOR (B2B)
// =============================================================================

func TestContractor_NoticeSatisfied(t *testing.T) {
	// GIVEN: a B2B window 25 hours out, 8 hours long, nothing existing
	s := availability.NewContractor(rules(schedule.Contractor), schedule.FixedClock{At: now})
	candidate := schedule.Availability{
		ID:             "a-1",
		UserID:         "emp-1",
		EmploymentType: schedule.Contractor,
		TimeRange:      schedule.MustTimeRange("09:00", "17:00"),
		Date:           now.Add(25 * time.Hour),
	}

	// THEN: it validates
	assert.NoError(t, s.Validate(candidate, nil))
}

func TestContractor_NoticeTooShort(t *testing.T) {
	// GIVEN: a B2B window one hour out
	s := availability.NewContractor(rules(schedule.Contractor), schedule.FixedClock{At: now})
	candidate := schedule.Availability{
		ID:             "a-1",
		UserID:         "emp-1",
		EmploymentType: schedule.Contractor,
		TimeRange:      schedule.MustTimeRange("09:00", "17:00"),
		Date:           now.Add(time.Hour),
	}

	// THEN: notice period fails with the B2B wording
	err := s.Validate(candidate, nil)
	require.ErrorIs(t, err, schedule.ErrInvalidAvailability)
	assert.Equal(t, schedule.ReasonNoticePeriod, reason(t, err))
	assert.Contains(t, err.Error(), "must be submitted at least 24 hours in advance for B2B contract")
}

func TestContractor_WeekendAllowed(t *testing.T) {
	s := availability.NewContractor(rules(schedule.Contractor), schedule.FixedClock{At: now})
	saturday := monday.AddDate(0, 0, 5)

	assert.NoError(t, s.Validate(window("a-1", schedule.Contractor, saturday, "08:00", "20:00"), nil))
}

// =============================================================================
// EMPLOYMENT CONTRACT
// =============================================================================

func TestEmploymentContract_WeeklyCapReached(t *testing.T) {
	// GIVEN: 40 hours already declared this week
	s := availability.NewEmploymentContract(rules(schedule.EmploymentContract), schedule.FixedClock{At: now})
	existing := fullWeek()

	// WHEN: adding one more minute
	err := s.Validate(window("a-new", schedule.EmploymentContract, monday.AddDate(0, 0, 2), "20:00", "20:01"), existing)

	// THEN: weekly limit fails
	require.ErrorIs(t, err, schedule.ErrInvalidAvailability)
	assert.Equal(t, schedule.ReasonWeeklyLimit, reason(t, err))
}

func TestEmploymentContract_WeeklyCapExactlyMet(t *testing.T) {
	// GIVEN: 39h59m declared this week
	s := availability.NewEmploymentContract(rules(schedule.EmploymentContract), schedule.FixedClock{At: now})
	existing := fullWeek()
	existing[4] = window("w-e", schedule.EmploymentContract, monday.AddDate(0, 0, 4), "09:00", "16:59")

	// WHEN: adding one minute
	err := s.Validate(window("a-new", schedule.EmploymentContract, monday.AddDate(0, 0, 4), "16:59", "17:00"), existing)

	// THEN: 40h exactly is accepted
	assert.NoError(t, err)
}

func TestEmploymentContract_WeeklyCapIgnoresOtherWeeksAndSelf(t *testing.T) {
	s := availability.NewEmploymentContract(rules(schedule.EmploymentContract), schedule.FixedClock{At: now})
	existing := fullWeek()

	// this week's windows don't count toward next week
	nextMonday := monday.AddDate(0, 0, 7)
	assert.NoError(t, s.Validate(window("a-new", schedule.EmploymentContract, nextMonday, "09:00", "17:00"), existing))

	// updating an existing window replaces its own duration
	assert.NoError(t, s.Validate(window("w-a", schedule.EmploymentContract, monday, "10:00", "18:00"), existing))
}

func TestEmploymentContract_WeekendBlocked(t *testing.T) {
	s := availability.NewEmploymentContract(rules(schedule.EmploymentContract), schedule.FixedClock{At: now})

	for _, offset := range []int{5, 6} {
		err := s.Validate(window("a-1", schedule.EmploymentContract, monday.AddDate(0, 0, offset), "09:00", "13:00"), nil)
		require.ErrorIs(t, err, schedule.ErrInvalidAvailability)
		assert.Equal(t, schedule.ReasonWeekendWork, reason(t, err))
	}
}

func TestEmploymentContract_CheckOrder(t *testing.T) {
	s := availability.NewEmploymentContract(rules(schedule.EmploymentContract), schedule.FixedClock{At: now})

	// GIVEN: a 9 hour window two hours out: daily limit wins over notice
	err := s.Validate(window("a-1", schedule.EmploymentContract, now.Add(2*time.Hour), "08:00", "17:00"), nil)
	assert.Equal(t, schedule.ReasonDailyLimit, reason(t, err))

	// GIVEN: on Friday noon, a short window for the next day: notice wins over weekend
	friday := availability.NewEmploymentContract(rules(schedule.EmploymentContract),
		schedule.FixedClock{At: time.Date(2025, time.May, 30, 12, 0, 0, 0, time.UTC)})
	saturday := time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)
	err = friday.Validate(window("a-1", schedule.EmploymentContract, saturday, "08:00", "12:00"), nil)
	assert.Equal(t, schedule.ReasonNoticePeriod, reason(t, err))
}

func TestEmploymentContract_SameDayOverlap(t *testing.T) {
	s := availability.NewEmploymentContract(rules(schedule.EmploymentContract), schedule.FixedClock{At: now})
	existing := []schedule.Availability{window("w-1", schedule.EmploymentContract, monday, "09:00", "12:00")}

	err := s.Validate(window("a-1", schedule.EmploymentContract, monday, "11:00", "13:00"), existing)
	assert.Equal(t, schedule.ReasonOverlap, reason(t, err))

	assert.NoError(t, s.Validate(window("a-1", schedule.EmploymentContract, monday, "12:00", "13:00"), existing))
}

func TestEmploymentContract_GeneratesWeekdaysOnly(t *testing.T) {
	// GIVEN: Monday through the following Monday (exclusive)
	s := availability.NewEmploymentContract(rules(schedule.EmploymentContract), schedule.FixedClock{At: now})
	params := schedule.GenerationParams{UserID: "emp-1", WorkingHours: schedule.MustTimeRange("09:00", "17:00")}

	got, err := s.GenerateAvailabilities(monday, monday.AddDate(0, 0, 7), params, nil)
	require.NoError(t, err)

	// THEN: five windows, Monday to Friday, all for the user
	require.Len(t, got, 5)
	for i, a := range got {
		assert.Equal(t, monday.AddDate(0, 0, i), a.Date)
		assert.Equal(t, "emp-1", a.UserID)
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, now, a.CreatedAt)
	}
}

func TestEmploymentContract_GenerationStopsAtFirstInvalidDay(t *testing.T) {
	// GIVEN: Wednesday already carries a two hour early window
	s := availability.NewEmploymentContract(rules(schedule.EmploymentContract), schedule.FixedClock{At: now})
	params := schedule.GenerationParams{UserID: "emp-1", WorkingHours: schedule.MustTimeRange("09:00", "17:00")}
	existing := []schedule.Availability{window("w-1", schedule.EmploymentContract, monday.AddDate(0, 0, 2), "06:00", "08:00")}

	// WHEN: generating a full week
	got, err := s.GenerateAvailabilities(monday, monday.AddDate(0, 0, 7), params, existing)

	// THEN: the weekly cap trips on Friday and nothing is returned
	require.ErrorIs(t, err, schedule.ErrInvalidAvailability)
	assert.Equal(t, schedule.ReasonWeeklyLimit, reason(t, err))
	assert.Nil(t, got)
}

func TestOtherStrategies_DoNotGenerate(t *testing.T) {
	params := schedule.GenerationParams{UserID: "emp-1", WorkingHours: schedule.MustTimeRange("09:00", "17:00")}
	clock := schedule.FixedClock{At: now}

	for _, s := range []availability.Strategy{
		availability.NewCivilContract(rules(schedule.CivilContract), clock),
		availability.NewContractor(rules(schedule.Contractor), clock),
	} {
		got, err := s.GenerateAvailabilities(monday, monday.AddDate(0, 0, 7), params, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestStrategies_OnePerCatalogType(t *testing.T) {
	strategies := availability.Strategies(schedule.DefaultRuleCatalog(), schedule.SystemClock{})
	require.Len(t, strategies, 3)

	for _, et := range schedule.EmploymentTypes() {
		matches := 0
		for _, s := range strategies {
			if s.Supports(et) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, string(et))
	}
}

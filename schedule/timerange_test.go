package schedule_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/schedule"
)

func TestTimeRange_StartNotBeforeEnd_Rejected(t *testing.T) {
	// GIVEN: every start >= end pair on a 30 minute grid
	// THEN: construction fails with InvalidTimeRange
	for start := schedule.TimeOfDay(0); start <= schedule.MinutesPerDay; start += 30 {
		for end := schedule.TimeOfDay(0); end <= start; end += 30 {
			_, err := schedule.NewTimeRange(start, end)
			require.ErrorIs(t, err, schedule.ErrInvalidTimeRange, "start=%s end=%s", start, end)
		}
	}
}

func TestTimeRange_DurationMatchesDifference(t *testing.T) {
	// GIVEN: every start < end pair on a 45 minute grid
	// THEN: construction succeeds and duration is end - start
	for start := schedule.TimeOfDay(0); start < schedule.MinutesPerDay; start += 45 {
		for end := start + 1; end <= schedule.MinutesPerDay; end += 45 {
			tr, err := schedule.NewTimeRange(start, end)
			require.NoError(t, err)
			assert.Equal(t, int(end-start), tr.DurationMinutes())
		}
	}
}

func TestTimeRange_OverlapIsSymmetric(t *testing.T) {
	ranges := []schedule.TimeRange{
		schedule.MustTimeRange("08:00", "12:00"),
		schedule.MustTimeRange("12:00", "16:00"),
		schedule.MustTimeRange("11:59", "12:01"),
		schedule.MustTimeRange("09:00", "10:00"),
		schedule.MustTimeRange("00:00", "24:00"),
		schedule.MustTimeRange("16:30", "17:00"),
	}
	for _, a := range ranges {
		for _, b := range ranges {
			assert.Equal(t, a.Overlaps(b), b.Overlaps(a), "%s vs %s", a, b)
		}
	}
}

func TestTimeRange_TouchingEndpointsDoNotOverlap(t *testing.T) {
	morning := schedule.MustTimeRange("08:00", "12:00")
	afternoon := schedule.MustTimeRange("12:00", "16:00")

	assert.False(t, morning.Overlaps(afternoon))
	assert.True(t, morning.Overlaps(schedule.MustTimeRange("11:59", "13:00")))
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := schedule.ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, tod.Hour())
	assert.Equal(t, 30, tod.Minute())

	end, err := schedule.ParseTimeOfDay("24:00")
	require.NoError(t, err)
	assert.Equal(t, schedule.TimeOfDay(schedule.MinutesPerDay), end)

	_, err = schedule.ParseTimeOfDay("9am")
	assert.ErrorIs(t, err, schedule.ErrInvalidTimeRange)
}

func TestTimeRange_JSONRejectsInvertedRange(t *testing.T) {
	var tr schedule.TimeRange
	require.NoError(t, json.Unmarshal([]byte(`{"start":"09:00","end":"17:00"}`), &tr))
	assert.Equal(t, 480, tr.DurationMinutes())

	err := json.Unmarshal([]byte(`{"start":"17:00","end":"09:00"}`), &tr)
	assert.ErrorIs(t, err, schedule.ErrInvalidTimeRange)
}

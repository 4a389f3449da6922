package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/schedule"
)

var leaveNow = time.Date(2025, time.May, 5, 10, 0, 0, 0, time.UTC)

func pendingHoliday(start time.Time) schedule.LeaveRequest {
	return schedule.NewLeaveRequest("lr-1", "emp-1", schedule.Holiday, start, start.AddDate(0, 0, 4), "trip", true, leaveNow)
}

func TestLeaveRequest_SickLeaveIsAutoApproved(t *testing.T) {
	// GIVEN: a leave type that doesn't require approval
	// WHEN: the request is created
	r := schedule.NewLeaveRequest("lr-1", "emp-1", schedule.SickLeave, leaveNow, leaveNow, "flu", false, leaveNow)

	// THEN: it is APPROVED with approval date = creation time
	assert.Equal(t, schedule.LeaveApproved, r.Status)
	require.NotNil(t, r.ApprovalDate)
	assert.Equal(t, r.CreatedAt, *r.ApprovalDate)
	assert.Nil(t, r.ApproverID)
}

func TestLeaveRequest_ApproveOnlyFromPending(t *testing.T) {
	r := pendingHoliday(date(2025, time.June, 2))

	// WHEN: approved once
	require.NoError(t, r.Approve("mgr-1", "enjoy", leaveNow))

	// THEN: fields are recorded
	assert.Equal(t, schedule.LeaveApproved, r.Status)
	assert.Equal(t, "mgr-1", *r.ApproverID)
	assert.Equal(t, leaveNow, *r.ApprovalDate)
	assert.Equal(t, "enjoy", r.Comments)
	assert.Equal(t, leaveNow, r.UpdatedAt)

	// AND: a second approve or a reject fails
	assert.ErrorIs(t, r.Approve("mgr-1", "", leaveNow), schedule.ErrInvalidStateTransition)
	assert.ErrorIs(t, r.Reject("mgr-1", "", leaveNow), schedule.ErrInvalidStateTransition)
}

func TestLeaveRequest_RejectOnlyFromPending(t *testing.T) {
	r := pendingHoliday(date(2025, time.June, 2))

	require.NoError(t, r.Reject("mgr-1", "busy month", leaveNow))
	assert.Equal(t, schedule.LeaveRejected, r.Status)

	err := r.Reject("mgr-1", "again", leaveNow)
	var terr *schedule.StateTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, schedule.LeaveRejected, terr.From)
	assert.Equal(t, "reject", terr.Action)
}

func TestLeaveRequest_CancelApprovedBeforeStart(t *testing.T) {
	r := pendingHoliday(date(2025, time.June, 2))
	require.NoError(t, r.Approve("mgr-1", "", leaveNow))

	require.NoError(t, r.Cancel(leaveNow))
	assert.Equal(t, schedule.LeaveCancelled, r.Status)

	// THEN: cancelled is terminal
	assert.ErrorIs(t, r.Cancel(leaveNow), schedule.ErrInvalidStateTransition)
}

func TestLeaveRequest_CancelApprovedOnOrAfterStartFails(t *testing.T) {
	for _, start := range []time.Time{date(2025, time.May, 5), date(2025, time.May, 1)} {
		r := pendingHoliday(start)
		require.NoError(t, r.Approve("mgr-1", "", leaveNow))

		err := r.Cancel(leaveNow)
		assert.ErrorIs(t, err, schedule.ErrInvalidStateTransition, start.Format(schedule.DateLayout))
		assert.Equal(t, schedule.LeaveApproved, r.Status)
	}
}

func TestLeaveRequest_CancelComparesDaysInTheLeaveZone(t *testing.T) {
	// GIVEN: an approved holiday starting Tuesday 2026-10-20 in Warsaw
	warsaw := time.FixedZone("Europe/Warsaw", 2*60*60)
	r := pendingHoliday(time.Date(2026, time.October, 20, 0, 0, 0, 0, warsaw))
	require.NoError(t, r.Approve("mgr-1", "", leaveNow))

	// WHEN: cancelled at 23:30 UTC Monday, already Tuesday in Warsaw
	err := r.Cancel(time.Date(2026, time.October, 19, 23, 30, 0, 0, time.UTC))

	// THEN: the leave has started
	assert.ErrorIs(t, err, schedule.ErrInvalidStateTransition)
	assert.Equal(t, schedule.LeaveApproved, r.Status)
}

func TestLeaveRequest_CancelPendingAlwaysAllowed(t *testing.T) {
	r := pendingHoliday(date(2025, time.May, 1))
	require.NoError(t, r.Cancel(leaveNow))
	assert.Equal(t, schedule.LeaveCancelled, r.Status)
}

func TestLeaveRequest_CancelRejectedFails(t *testing.T) {
	r := pendingHoliday(date(2025, time.June, 2))
	require.NoError(t, r.Reject("mgr-1", "", leaveNow))
	assert.ErrorIs(t, r.Cancel(leaveNow), schedule.ErrInvalidStateTransition)
}

func TestLeaveRequest_OverlapIsInclusive(t *testing.T) {
	a := pendingHoliday(date(2025, time.June, 2)) // Jun 2 - Jun 6
	b := pendingHoliday(date(2025, time.June, 6)) // Jun 6 - Jun 10
	c := pendingHoliday(date(2025, time.June, 7))

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	assert.False(t, a.Overlaps(c))
}

func TestParseLeaveType(t *testing.T) {
	lt, err := schedule.ParseLeaveType("personal_leave")
	require.NoError(t, err)
	assert.Equal(t, schedule.PersonalLeave, lt)

	_, err = schedule.ParseLeaveType("SABBATICAL")
	assert.Error(t, err)
}

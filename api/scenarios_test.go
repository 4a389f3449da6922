package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/api"
	"github.com/warp/workforce-engine/engine"
	"github.com/warp/workforce-engine/schedule"
	memstore "github.com/warp/workforce-engine/schedule/store"
	"github.com/warp/workforce-engine/service"
)

func newScenarioServer(t *testing.T) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	clock := schedule.FixedClock{At: now}
	svc := service.New(memstore.NewTxMemory(), engine.Default(clock, logger),
		service.WithClock(clock),
		service.WithLogger(logger),
	)
	h := api.NewHandler(svc, api.WithClock(clock), api.WithLogger(logger))
	return &testServer{t: t, handler: api.NewRouter(h, api.RouterOptions{EnableScenarios: true}), svc: svc}
}

func TestScenarios_List(t *testing.T) {
	s := newScenarioServer(t)

	rec := s.do(http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[[]api.ScenarioDTO](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "contact-center", list[0].ID)
	assert.Equal(t, "leave-queue", list[1].ID)
}

func TestScenarios_DisabledByDefault(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/scenarios", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenarios_ContactCenter(t *testing.T) {
	s := newScenarioServer(t)

	// WHEN
	rec := s.do(http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "contact-center"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: the employee has a full generated work week
	rec = s.do(http.MethodGet, "/api/users/agent-employee/availabilities?from=2025-06-02&to=2025-06-08", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]api.AvailabilityDTO](t, rec), 5)

	// AND: the civil contractor covers Saturday
	rec = s.do(http.MethodGet, "/api/users/agent-civil/availabilities?from=2025-06-07&to=2025-06-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	civil := decode[[]api.AvailabilityDTO](t, rec)
	require.Len(t, civil, 1)
	assert.Equal(t, "2025-06-07", civil[0].Date)

	// AND: the first shift is booked
	rec = s.do(http.MethodGet, "/api/users/agent-employee/shifts?date=2025-06-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]api.ShiftDTO](t, rec), 1)
}

func TestScenarios_ContactCenterTwiceHitsRules(t *testing.T) {
	s := newScenarioServer(t)
	body := map[string]string{"scenario_id": "contact-center"}

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/scenarios/load", body).Code)

	// The agents are reused; the second generated week collides with the first
	rec := s.do(http.MethodPost, "/api/scenarios/load", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestScenarios_LeaveQueue(t *testing.T) {
	s := newScenarioServer(t)

	rec := s.do(http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "leave-queue"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Sick leave is approved on creation; the other two wait
	rec = s.do(http.MethodGet, "/api/leave-requests/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[[]api.LeaveRequestDTO](t, rec)
	require.Len(t, pending, 2)
	for _, lr := range pending {
		assert.Equal(t, "PENDING", lr.Status)
	}
}

func TestScenarios_Unknown(t *testing.T) {
	s := newScenarioServer(t)

	rec := s.do(http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "space-station"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/scenarios/load", strings.NewReader("{"))
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

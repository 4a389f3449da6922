/*
scenarios.go - Demo scenario loaders for development and demonstrations

PURPOSE:
  Populates the store with a small contact-center team so the API can be
  explored without hand-crafting requests. Everything goes through the
  service, so the rules apply exactly as for real submissions.

AVAILABLE SCENARIOS:
  contact-center:  Three agents, one per employment type, with generated
                   availabilities and a first shift
  leave-queue:     The same agents plus leave requests waiting for approval

HOW SCENARIOS WORK:
  1. Create the agents (existing ones are kept)
  2. Submit availabilities, shifts or leave relative to today
  Loading a scenario twice fails on the second submission: the rules see
  the data from the first load.

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "leave-queue"}

NOTE:
  Only mounted when RouterOptions.EnableScenarios is set.
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/warp/workforce-engine/schedule"
	"github.com/warp/workforce-engine/service"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "contact-center",
		Name:        "Contact Center",
		Description: "Employee, civil-contract and B2B agents with next week's availabilities",
	},
	{
		ID:          "leave-queue",
		Name:        "Leave Queue",
		Description: "The contact-center agents with holiday and personal leave awaiting approval",
	},
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var err error
	switch req.ScenarioID {
	case "contact-center":
		err = h.loadContactCenterScenario(ctx)
	case "leave-queue":
		err = h.loadLeaveQueueScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	if err != nil {
		h.writeServiceError(w, r, fmt.Errorf("load scenario %s: %w", req.ScenarioID, err))
		return
	}

	h.log.WithField("scenario", req.ScenarioID).Info("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) createAgents(ctx context.Context) error {
	office := schedule.MustTimeRange("09:00", "17:00")
	agents := []service.CreateUserInput{
		{
			ID:             "agent-employee",
			Name:           "Ada Employee",
			Email:          "ada@example.com",
			EmploymentType: schedule.EmploymentContract,
			WorkingHours:   &office,
			SkillPathIDs:   []string{"voice", "chat"},
		},
		{
			ID:             "agent-civil",
			Name:           "Cyril Civil",
			Email:          "cyril@example.com",
			EmploymentType: schedule.CivilContract,
			SkillPathIDs:   []string{"chat"},
		},
		{
			ID:             "agent-b2b",
			Name:           "Bea Contractor",
			Email:          "bea@example.com",
			EmploymentType: schedule.Contractor,
			SkillPathIDs:   []string{"email", "chat"},
		},
	}
	for _, in := range agents {
		if _, err := h.svc.CreateUser(ctx, in); err != nil && !errors.Is(err, schedule.ErrConflict) {
			return err
		}
	}
	return nil
}

func (h *Handler) loadContactCenterScenario(ctx context.Context) error {
	if err := h.createAgents(ctx); err != nil {
		return err
	}

	monday, saturday := service.NextWorkWeek(h.today())
	if _, err := h.svc.GenerateAvailabilities(ctx, "agent-employee", monday, saturday); err != nil {
		return err
	}

	// Weekend cover comes from the agents whose contracts allow it
	if _, err := h.svc.CreateAvailability(ctx, service.AvailabilityInput{
		UserID:    "agent-civil",
		Date:      saturday,
		TimeRange: schedule.MustTimeRange("10:00", "18:00"),
	}); err != nil {
		return err
	}

	until := monday.AddDate(0, 0, 27)
	evenings, err := schedule.NewRecurrencePattern(schedule.FrequencyWeekly, 1, []int{2, 4}, nil, nil, until)
	if err != nil {
		return err
	}
	if _, err := h.svc.CreateAvailability(ctx, service.AvailabilityInput{
		UserID:     "agent-b2b",
		Date:       monday.AddDate(0, 0, 1),
		TimeRange:  schedule.MustTimeRange("17:00", "22:00"),
		Recurrence: &evenings,
	}); err != nil {
		return err
	}

	_, err = h.svc.CreateShift(ctx, service.ShiftInput{
		UserID:      "agent-employee",
		SkillPathID: "voice",
		Date:        monday,
		TimeRange:   schedule.MustTimeRange("09:00", "13:00"),
		Notes:       "morning queue",
	})
	return err
}

func (h *Handler) loadLeaveQueueScenario(ctx context.Context) error {
	if err := h.createAgents(ctx); err != nil {
		return err
	}

	today := h.today()
	requests := []service.LeaveInput{
		{
			UserID:    "agent-employee",
			Type:      schedule.Holiday,
			StartDate: today.AddDate(0, 0, 21),
			EndDate:   today.AddDate(0, 0, 25),
			Reason:    "summer trip",
		},
		{
			UserID:    "agent-civil",
			Type:      schedule.PersonalLeave,
			StartDate: today.AddDate(0, 0, 11),
			EndDate:   today.AddDate(0, 0, 11),
			Reason:    "moving house",
		},
		{
			UserID:    "agent-b2b",
			Type:      schedule.SickLeave,
			StartDate: today,
			EndDate:   today.AddDate(0, 0, 1),
			Reason:    "flu",
		},
	}
	for _, in := range requests {
		if _, err := h.svc.CreateLeaveRequest(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/schedule"
	"github.com/warp/workforce-engine/service"
)

// =============================================================================
// ERROR MAPPING
// =============================================================================
//
//   service.ErrInvalidInput          400
//   rule violations (IsClientError)  422
//   ErrInvalidStateTransition        409
//   ErrConflict                      409
//   ErrNotFound                      404
//   ErrNoStrategyFound               500 (wiring bug)
//   anything else                    500

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request"
	case schedule.IsClientError(err):
		return http.StatusUnprocessableEntity, "Validation failed"
	case errors.Is(err, schedule.ErrInvalidStateTransition):
		return http.StatusConflict, "Invalid state transition"
	case errors.Is(err, schedule.ErrConflict):
		return http.StatusConflict, "Conflicting record"
	case schedule.IsNotFound(err):
		return http.StatusNotFound, "Not found"
	case schedule.IsConfigError(err):
		return http.StatusInternalServerError, "Rule engine misconfigured"
	}
	return http.StatusInternalServerError, "Internal error"
}

// writeServiceError maps err onto a status code and a machine-readable code.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	resp := ErrorResponse{Error: message, Details: err.Error()}

	var (
		aerr *schedule.AvailabilityError
		lerr *schedule.LeaveRequestError
		werr *schedule.WorkScheduleError
	)
	switch {
	case errors.As(err, &aerr):
		resp.Code = string(aerr.Reason)
	case errors.As(err, &lerr):
		resp.Code = string(lerr.Code)
		if lerr.Value != 0 || lerr.Code == schedule.LeaveInsufficientBalance {
			resp.Value = intPtr(lerr.Value)
		}
	case errors.As(err, &werr):
		resp.Code = string(werr.Reason)
	}

	if status >= http.StatusInternalServerError {
		h.log.WithFields(logrus.Fields{"path": r.URL.Path, "method": r.Method}).WithError(err).Error("request failed")
		resp.Details = ""
	}
	writeJSON(w, status, resp)
}

// writeDecodeError reports a body that failed to decode. Time ranges and
// recurrence patterns validate while decoding, so their errors are rule
// violations (422); anything else is malformed JSON (400).
func (h *Handler) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if schedule.IsClientError(err) {
		h.writeServiceError(w, r, err)
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request body", err)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func strPtr(s string) *string {
	return &s
}

func intPtr(n int) *int {
	return &n
}

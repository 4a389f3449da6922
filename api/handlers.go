/*
handlers.go - HTTP API handlers for the workforce scheduling service

PURPOSE:
  Exposes the service layer over REST. Handlers parse the request, call one
  service method and serialize the result; every rule lives below them.

ENDPOINTS:
  Users:
    POST   /api/users                                  Create user
    GET    /api/users/{id}                             Get user

  Availabilities:
    POST   /api/users/{id}/availabilities              Submit a window
    GET    /api/users/{id}/availabilities?from=&to=    Windows anchored in range
    POST   /api/users/{id}/availabilities/generate     Generate from working hours
    GET    /api/availabilities/{id}                    Get window
    PUT    /api/availabilities/{id}                    Replace window
    DELETE /api/availabilities/{id}                    Delete window
    GET    /api/availabilities/{id}/occurrences        Expand recurrence

  Leave:
    POST   /api/users/{id}/leave-requests              Submit request
    GET    /api/users/{id}/leave-requests?from=&to=    Requests intersecting range
    GET    /api/leave-requests/pending                 Approval queue
    GET    /api/leave-requests/{id}                    Get request
    POST   /api/leave-requests/{id}/approve            Approve (PENDING only)
    POST   /api/leave-requests/{id}/reject             Reject (PENDING only)
    POST   /api/leave-requests/{id}/cancel             Cancel

  Shifts:
    POST   /api/users/{id}/shifts                      Assign shift
    GET    /api/users/{id}/shifts?date=                Shifts on a day
    PUT    /api/shifts/{id}                            Move/resize shift
    DELETE /api/shifts/{id}                            Delete shift

  Admin:
    POST   /api/admin/generate-availabilities          Run the generator now
    GET    /api/admin/scheduler                        Generator status

ERROR HANDLING:
  See errors.go. Rule violations return 422 with the violated rule in "code".

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - service/: the use cases behind each endpoint
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/schedule"
	"github.com/warp/workforce-engine/service"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	svc       *service.Service
	scheduler *AvailabilityScheduler
	health    func(context.Context) error
	clock     schedule.Clock
	loc       *time.Location
	log       logrus.FieldLogger
}

type HandlerOption func(*Handler)

func WithLogger(l logrus.FieldLogger) HandlerOption {
	return func(h *Handler) { h.log = l }
}

// WithLocation sets the zone request dates are parsed in.
func WithLocation(loc *time.Location) HandlerOption {
	return func(h *Handler) { h.loc = loc }
}

func WithClock(c schedule.Clock) HandlerOption {
	return func(h *Handler) { h.clock = c }
}

func WithHealthCheck(fn func(context.Context) error) HandlerOption {
	return func(h *Handler) { h.health = fn }
}

func WithScheduler(s *AvailabilityScheduler) HandlerOption {
	return func(h *Handler) { h.scheduler = s }
}

// NewHandler creates a new handler around the service.
func NewHandler(svc *service.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:   svc,
		clock: schedule.SystemClock{},
		loc:   time.UTC,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) today() time.Time {
	return schedule.StartOfDay(h.clock.Now().In(h.loc))
}

// Health reports whether the store is reachable.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// CreateUser creates a new user.
// POST /api/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}

	u, err := h.svc.CreateUser(r.Context(), service.CreateUserInput{
		ID:             req.ID,
		Name:           req.Name,
		Email:          req.Email,
		EmploymentType: schedule.EmploymentType(req.EmploymentType),
		WorkingHours:   req.WorkingHours,
		SkillPathIDs:   req.SkillPathIDs,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

// GetUser returns a single user.
// GET /api/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

// =============================================================================
// AVAILABILITY HANDLERS
// =============================================================================

// CreateAvailability submits a window for the user.
// POST /api/users/{id}/availabilities
func (h *Handler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	in, ok := h.availabilityInput(w, r)
	if !ok {
		return
	}
	in.UserID = chi.URLParam(r, "id")

	a, err := h.svc.CreateAvailability(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAvailabilityDTO(a))
}

// ListAvailabilities defaults to the current ISO week.
// GET /api/users/{id}/availabilities?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListAvailabilities(w http.ResponseWriter, r *http.Request) {
	period, err := h.rangeQuery(r, schedule.WeekOf(h.today()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	as, err := h.svc.ListAvailabilities(r.Context(), chi.URLParam(r, "id"), period.Start, period.End)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityDTOs(as))
}

// GenerateAvailabilities fills a range from the user's working hours.
// POST /api/users/{id}/availabilities/generate
func (h *Handler) GenerateAvailabilities(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.writeDecodeError(w, r, err)
			return
		}
	}

	start, end := service.NextWorkWeek(h.today())
	if req.StartDate != "" || req.EndDate != "" {
		var err error
		if start, err = schedule.ParseDate(req.StartDate, h.loc); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
			return
		}
		if end, err = schedule.ParseDate(req.EndDate, h.loc); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
			return
		}
	}

	as, err := h.svc.GenerateAvailabilities(r.Context(), chi.URLParam(r, "id"), start, end)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAvailabilityDTOs(as))
}

// GetAvailability returns one window.
// GET /api/availabilities/{id}
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityDTO(a))
}

// UpdateAvailability replaces a window's date, time range and recurrence.
// PUT /api/availabilities/{id}
func (h *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	in, ok := h.availabilityInput(w, r)
	if !ok {
		return
	}

	a, err := h.svc.UpdateAvailability(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityDTO(a))
}

// DeleteAvailability removes a window.
// DELETE /api/availabilities/{id}
func (h *Handler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAvailability(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOccurrences expands a window over a range, defaulting to 30 days from today.
// GET /api/availabilities/{id}/occurrences?from=&to=
func (h *Handler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	period, err := h.rangeQuery(r, schedule.Period{Start: today, End: today.AddDate(0, 0, 30)})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	id := chi.URLParam(r, "id")
	a, err := h.svc.GetAvailability(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dates, err := h.svc.Occurrences(r.Context(), id, period.Start, period.End)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	dto := OccurrencesDTO{AvailabilityID: id, TimeRange: a.TimeRange.String(), Dates: make([]string, len(dates))}
	for i, d := range dates {
		dto.Dates[i] = schedule.FormatDate(d)
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) availabilityInput(w http.ResponseWriter, r *http.Request) (service.AvailabilityInput, bool) {
	var req AvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, r, err)
		return service.AvailabilityInput{}, false
	}
	if req.TimeRange == nil {
		writeError(w, http.StatusBadRequest, "time_range is required", nil)
		return service.AvailabilityInput{}, false
	}
	date, err := schedule.ParseDate(req.Date, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return service.AvailabilityInput{}, false
	}
	return service.AvailabilityInput{Date: date, TimeRange: *req.TimeRange, Recurrence: req.Recurrence}, true
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// CreateLeaveRequest submits a leave request.
// POST /api/users/{id}/leave-requests
func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}
	leaveType, err := schedule.ParseLeaveType(req.LeaveType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave_type", err)
		return
	}
	start, err := schedule.ParseDate(req.StartDate, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := schedule.ParseDate(req.EndDate, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}

	lr, err := h.svc.CreateLeaveRequest(r.Context(), service.LeaveInput{
		UserID:    chi.URLParam(r, "id"),
		Type:      leaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(lr))
}

// ListLeaveRequests defaults to the current calendar year.
// GET /api/users/{id}/leave-requests?from=&to=
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	period, err := h.rangeQuery(r, schedule.YearOf(h.today()))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	rs, err := h.svc.ListLeaveRequests(r.Context(), chi.URLParam(r, "id"), period.Start, period.End)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTOs(rs))
}

// ListPendingLeaveRequests returns the approval queue.
// GET /api/leave-requests/pending
func (h *Handler) ListPendingLeaveRequests(w http.ResponseWriter, r *http.Request) {
	rs, err := h.svc.PendingLeaveRequests(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTOs(rs))
}

// GetLeaveRequest returns one request.
// GET /api/leave-requests/{id}
func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	lr, err := h.svc.GetLeaveRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(lr))
}

// ApproveLeaveRequest approves a pending request.
// POST /api/leave-requests/{id}/approve
func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.ApproveLeaveRequest)
}

// RejectLeaveRequest rejects a pending request.
// POST /api/leave-requests/{id}/reject
func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.RejectLeaveRequest)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, approverID, comments string) (schedule.LeaveRequest, error)) {
	var req DecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, r, err)
		return
	}
	if req.ApproverID == "" {
		writeError(w, http.StatusBadRequest, "approver_id is required", nil)
		return
	}

	lr, err := fn(r.Context(), chi.URLParam(r, "id"), req.ApproverID, req.Comments)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(lr))
}

// CancelLeaveRequest withdraws a request.
// POST /api/leave-requests/{id}/cancel
func (h *Handler) CancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	lr, err := h.svc.CancelLeaveRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(lr))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// CreateShift assigns a shift to the user.
// POST /api/users/{id}/shifts
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	in, ok := h.shiftInput(w, r)
	if !ok {
		return
	}
	in.UserID = chi.URLParam(r, "id")

	ws, err := h.svc.CreateShift(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(ws))
}

// ListShifts returns the user's shifts on one day, today by default.
// GET /api/users/{id}/shifts?date=YYYY-MM-DD
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	day := h.today()
	if s := r.URL.Query().Get("date"); s != "" {
		var err error
		if day, err = schedule.ParseDate(s, h.loc); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
	}

	shifts, err := h.svc.ListShifts(r.Context(), chi.URLParam(r, "id"), day)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]ShiftDTO, len(shifts))
	for i, ws := range shifts {
		dtos[i] = toShiftDTO(ws)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpdateShift moves or resizes a shift.
// PUT /api/shifts/{id}
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	in, ok := h.shiftInput(w, r)
	if !ok {
		return
	}

	ws, err := h.svc.UpdateShift(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(ws))
}

// DeleteShift removes a shift.
// DELETE /api/shifts/{id}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) shiftInput(w http.ResponseWriter, r *http.Request) (service.ShiftInput, bool) {
	var req ShiftRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, r, err)
		return service.ShiftInput{}, false
	}
	if req.TimeRange == nil {
		writeError(w, http.StatusBadRequest, "time_range is required", nil)
		return service.ShiftInput{}, false
	}
	date, err := schedule.ParseDate(req.Date, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return service.ShiftInput{}, false
	}
	return service.ShiftInput{
		SkillPathID: req.SkillPathID,
		Date:        date,
		TimeRange:   *req.TimeRange,
		Notes:       req.Notes,
	}, true
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerGeneration runs the availability generator immediately.
// POST /api/admin/generate-availabilities
func (h *Handler) TriggerGeneration(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "Scheduler not configured", nil)
		return
	}
	run, err := h.scheduler.RunNow(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run.DTO())
}

// SchedulerStatus reports the generator's schedule and last run.
// GET /api/admin/scheduler
func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		writeJSON(w, http.StatusOK, SchedulerStatusDTO{})
		return
	}
	writeJSON(w, http.StatusOK, h.scheduler.Status())
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// rangeQuery reads ?from=&to= as an inclusive range of whole days.
// Missing bounds come from def.
func (h *Handler) rangeQuery(r *http.Request, def schedule.Period) (schedule.Period, error) {
	p := def
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		from, err := schedule.ParseDate(s, h.loc)
		if err != nil {
			return schedule.Period{}, err
		}
		p.Start = from
	}
	if s := q.Get("to"); s != "" {
		to, err := schedule.ParseDate(s, h.loc)
		if err != nil {
			return schedule.Period{}, err
		}
		p.End = schedule.DayOf(to).End
	}
	if p.End.Before(p.Start) {
		return schedule.Period{}, fmt.Errorf("from %s is after to %s", schedule.FormatDate(p.Start), schedule.FormatDate(p.End))
	}
	return p, nil
}

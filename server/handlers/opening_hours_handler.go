package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"opening-hours/api/calendar"
	"opening-hours/models"
	services "opening-hours/service"
	"opening-hours/util"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	DAY_PATH_ARG = "day"
	ID_PATH_ARG  = "id"
)

// SlotRequest carries the HH:mm wall clock fields of a slot. Empty fields
// keep the current value of an existing slot.
type SlotRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type EditModeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type VisibilityResponse struct {
	Status  string `json:"status"`
	Working bool   `json:"working"`
}

// EditModeBroadcaster announces edit mode changes to every instance.
type EditModeBroadcaster interface {
	Broadcast(ctx context.Context, active bool) error
}

type OpeningHoursHandler struct {
	hours       *services.OpeningHoursService
	overview    *services.OverviewService
	sign        *services.OpenClosedSign
	visibility  *services.VisibilityService
	editMode    EditModeBroadcaster
	permissions services.PermissionChecker
	clock       services.Clock
	log         *zap.Logger
	validate    *validator.Validate
}

func NewOpeningHoursHandler(
	hours *services.OpeningHoursService,
	overview *services.OverviewService,
	sign *services.OpenClosedSign,
	visibility *services.VisibilityService,
	editMode EditModeBroadcaster,
	permissions services.PermissionChecker,
	clock services.Clock,
	log *zap.Logger,
) *OpeningHoursHandler {
	return &OpeningHoursHandler{
		hours:       hours,
		overview:    overview,
		sign:        sign,
		visibility:  visibility,
		editMode:    editMode,
		permissions: permissions,
		clock:       clock,
		log:         log,
		validate:    validator.New(),
	}
}

func (h *OpeningHoursHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetOverview returns the week bucketed per day with the current day,
// edit mode and visibility.
func (h *OpeningHoursHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	view := h.overview.Overview()
	view.Visibility = h.visibility.Status()
	h.writeJSON(w, http.StatusOK, view)
}

func (h *OpeningHoursHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.hours.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, events)
}

func (h *OpeningHoursHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.sign.Status(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *OpeningHoursHandler) GetVisibility(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, VisibilityResponse{Status: h.visibility.Status(), Working: h.visibility.Working()})
}

func (h *OpeningHoursHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	if !h.permissions.HasPermission(services.PERMISSION_CALENDAR_EVENT_ADD) {
		h.writeError(w, services.ErrPermissionDenied)
		return
	}
	status, err := h.visibility.Toggle(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, VisibilityResponse{Status: status})
}

// SetEditMode broadcasts an edit mode change, body {"active": bool}.
func (h *OpeningHoursHandler) SetEditMode(w http.ResponseWriter, r *http.Request) {
	var req EditModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Field 'active' is required", http.StatusBadRequest)
		return
	}
	if err := h.editMode.Broadcast(r.Context(), *req.Active); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSlot adds a slot to the day in the path.
func (h *OpeningHoursHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(mux.Vars(r)[DAY_PATH_ARG])
	if err != nil || h.validate.Var(day, "min=1,max=7") != nil {
		http.Error(w, "Day must be an ISO weekday between 1 and 7", http.StatusBadRequest)
		return
	}
	req, ok := h.decodeSlot(w, r)
	if !ok {
		return
	}

	slot := services.NewTimeSlot(day, nil, h.hours, h.clock)
	h.submit(w, r, slot, req, http.StatusCreated)
}

// UpdateSlot changes the slot with the id in the path.
func (h *OpeningHoursHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.findSlot(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeSlot(w, r)
	if !ok {
		return
	}
	h.submit(w, r, slot, req, http.StatusOK)
}

// DeleteSlot removes the slot with the id in the path.
func (h *OpeningHoursHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.findSlot(w, r)
	if !ok {
		return
	}
	session := slot.Edit(h.permissions)
	defer session.Close()

	if err := session.Delete(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("[OpeningHoursHandler] Slot deleted", zap.String("id", mux.Vars(r)[ID_PATH_ARG]))
	w.WriteHeader(http.StatusNoContent)
}

func (h *OpeningHoursHandler) GetICS(w http.ResponseWriter, r *http.Request) {
	events, err := h.hours.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(util.ExportOpeningHoursICS(events, h.clock.Now())))
}

func (h *OpeningHoursHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	days, err := h.hours.Days(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := util.RenderWeeklyOpeningHoursChart(w, days); err != nil {
		h.log.Error("[OpeningHoursHandler] Error rendering chart", zap.Error(err))
	}
}

func (h *OpeningHoursHandler) findSlot(w http.ResponseWriter, r *http.Request) (*services.TimeSlot, bool) {
	event, err := h.hours.Find(r.Context(), mux.Vars(r)[ID_PATH_ARG])
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	start, _ := h.hours.EventTimes(event)
	day := services.IsoWeekday(start.In(h.hours.Location()))
	return services.NewTimeSlot(day, event, h.hours, h.clock), true
}

func (h *OpeningHoursHandler) decodeSlot(w http.ResponseWriter, r *http.Request) (SlotRequest, bool) {
	var req SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *OpeningHoursHandler) submit(w http.ResponseWriter, r *http.Request, slot *services.TimeSlot, req SlotRequest, successCode int) {
	session := slot.Edit(h.permissions)
	defer session.Close()

	isNew := slot.Event() == nil
	if req.Start != "" || isNew {
		session.SetStartText(req.Start)
	}
	if req.End != "" || isNew {
		session.SetEndText(req.End)
	}

	violations, err := session.Submit(r.Context())
	if err != nil {
		h.writeSubmitError(w, err, violations)
		return
	}
	if len(violations) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, models.ViolationsResponse{Violations: violations})
		return
	}
	h.writeJSON(w, successCode, h.hours.Copy(slot.Event()))
}

func (h *OpeningHoursHandler) writeSubmitError(w http.ResponseWriter, err error, violations []string) {
	if errors.Is(err, calendar.ErrRejected) {
		h.writeJSON(w, http.StatusUnprocessableEntity, models.ViolationsResponse{Violations: violations})
		return
	}
	h.writeError(w, err)
}

func (h *OpeningHoursHandler) writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadGateway
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		code = http.StatusForbidden
	case errors.Is(err, services.ErrEventNotFound), errors.Is(err, calendar.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, services.ErrToggleInProgress), errors.Is(err, services.ErrSessionBusy):
		code = http.StatusConflict
	case errors.Is(err, calendar.ErrRejected):
		code = http.StatusUnprocessableEntity
	}
	if code >= http.StatusInternalServerError {
		h.log.Error("[OpeningHoursHandler] Request failed", zap.Error(err))
	}
	http.Error(w, http.StatusText(code), code)
}

func (h *OpeningHoursHandler) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("[OpeningHoursHandler] Error encoding response", zap.Error(err))
	}
}

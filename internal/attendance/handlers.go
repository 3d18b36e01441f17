package attendance

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/api"
	"workforce/internal/authz"
	"workforce/internal/employees"
	"workforce/internal/middleware"
	"workforce/internal/shared"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Post("/check-in", h.handleCheckIn)
		r.Get("/current", h.handleCurrent)
		r.Get("/", h.handleList)
		r.Get("/{locationID}", h.handleGet)
		r.Put("/{locationID}/location", h.handleLiveUpdate)
		r.Post("/{locationID}/check-out", h.handleCheckOut)
		r.Delete("/{locationID}", h.handleDelete)
	})
}

type checkInPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
	Device    string   `json:"device"`
	Accuracy  *float64 `json:"accuracy"`
}

type positionPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload checkInPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if payload.Latitude == nil {
		v.Add("latitude", "is required and must be numeric")
	}
	if payload.Longitude == nil {
		v.Add("longitude", "is required and must be numeric")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	loc, err := h.Service.CheckIn(r.Context(), caller, CheckInParams{
		Latitude:  *payload.Latitude,
		Longitude: *payload.Longitude,
		Address:   payload.Address,
		Device:    payload.Device,
		Accuracy:  payload.Accuracy,
		ClientIP:  shared.ClientIP(r),
	})
	if err != nil {
		h.writeError(w, r, err, "check_in_failed", "failed to check in")
		return
	}
	api.Created(w, loc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLiveUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload positionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if payload.Latitude == nil {
		v.Add("latitude", "is required and must be numeric")
	}
	if payload.Longitude == nil {
		v.Add("longitude", "is required and must be numeric")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	loc, err := h.Service.LiveUpdate(r.Context(), caller, chi.URLParam(r, "locationID"), PositionParams{
		Latitude:  *payload.Latitude,
		Longitude: *payload.Longitude,
		Accuracy:  payload.Accuracy,
	})
	if err != nil {
		h.writeError(w, r, err, "location_update_failed", "failed to update location")
		return
	}
	api.Success(w, loc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	loc, err := h.Service.CheckOut(r.Context(), caller, chi.URLParam(r, "locationID"))
	if err != nil {
		h.writeError(w, r, err, "check_out_failed", "failed to check out")
		return
	}
	api.Success(w, loc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Delete(r.Context(), caller, chi.URLParam(r, "locationID")); err != nil {
		h.writeError(w, r, err, "attendance_delete_failed", "failed to delete attendance record")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	loc, err := h.Service.Get(r.Context(), caller, chi.URLParam(r, "locationID"))
	if err != nil {
		h.writeError(w, r, err, "attendance_get_failed", "failed to load attendance record")
		return
	}
	api.Success(w, loc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	loc, err := h.Service.Current(r.Context(), caller, r.URL.Query().Get("employeeId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "no_open_session", "no open check-in session", middleware.GetRequestID(r.Context()))
			return
		}
		h.writeError(w, r, err, "attendance_get_failed", "failed to load open session")
		return
	}
	api.Success(w, loc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	p := shared.ParsePagination(r, 50, 200)
	list, err := h.Service.List(r.Context(), caller, r.URL.Query().Get("employeeId"), p.Limit, p.Offset)
	if err != nil {
		h.writeError(w, r, err, "attendance_list_failed", "failed to list attendance records")
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, authz.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to access this session", requestID)
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for caller", requestID)
	case errors.Is(err, ErrNotFound):
		api.Fail(w, http.StatusNotFound, "location_not_found", "attendance record not found", requestID)
	case errors.Is(err, ErrAlreadyCheckedIn):
		api.Fail(w, http.StatusConflict, "already_checked_in", "employee already has an open check-in session", requestID)
	case errors.Is(err, ErrSessionClosed):
		api.Fail(w, http.StatusConflict, "session_closed", "session is not checked-in", requestID)
	case errors.Is(err, ErrInvalidCoordinates):
		api.Fail(w, http.StatusBadRequest, "invalid_coordinates", "latitude, longitude or accuracy out of range", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

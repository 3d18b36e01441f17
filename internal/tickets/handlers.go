package tickets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"workforce/internal/api"
	"workforce/internal/authz"
	"workforce/internal/employees"
	"workforce/internal/middleware"
	"workforce/internal/shared"
)

type Handler struct {
	Store     *Store
	Directory *employees.Store
}

func NewHandler(store *Store, directory *employees.Store) *Handler {
	return &Handler{Store: store, Directory: directory}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tickets", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{ticketID}", h.handleGet)
		r.Put("/{ticketID}/status", h.handleUpdateStatus)
		r.Delete("/{ticketID}", h.handleDelete)
	})
}

type createTicketPayload struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Priority string `json:"priority"`
}

// handleCreate opens a ticket bound to the caller's own employee profile.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createTicketPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("subject", payload.Subject, "is required")
	v.Required("body", payload.Body, "is required")
	priority := strings.ToLower(strings.TrimSpace(payload.Priority))
	if priority == "" {
		priority = "medium"
	}
	v.Enum("priority", priority, Priorities, "must be one of low, medium, high")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	employeeID, err := h.Directory.EmployeeIDByUser(r.Context(), caller.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for caller", middleware.GetRequestID(r.Context()))
		return
	}

	t := &Ticket{
		EmployeeID: employeeID,
		Subject:    strings.TrimSpace(payload.Subject),
		Body:       payload.Body,
		Status:     StatusOpen,
		Priority:   priority,
	}
	if err := h.Store.Create(r.Context(), t); err != nil {
		api.Fail(w, http.StatusInternalServerError, "ticket_create_failed", "failed to create ticket", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" {
		v := shared.NewValidator()
		v.Enum("status", status, Statuses, "must be one of open, in-progress, resolved, closed")
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
	}

	employeeID := r.URL.Query().Get("employeeId")
	if !caller.IsAdmin() {
		own, err := h.Directory.EmployeeIDByUser(r.Context(), caller.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for caller", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = own
	}

	p := shared.ParsePagination(r, 50, 200)
	list, err := h.Store.List(r.Context(), employeeID, status, p.Limit, p.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "ticket_list_failed", "failed to list tickets", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	t, err := h.Store.Get(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "ticket_not_found", "ticket not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "ticket_get_failed", "failed to load ticket", middleware.GetRequestID(r.Context()))
		return
	}

	owner, err := h.Directory.OwnerUserID(r.Context(), t.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err := authz.Authorize(caller, owner); err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this ticket", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

type updateStatusPayload struct {
	Status string `json:"status"`
}

// handleUpdateStatus moves a ticket through its lifecycle. Admins may set any
// status; an employee may only close their own ticket.
func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload updateStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	status := strings.ToLower(strings.TrimSpace(payload.Status))
	v := shared.NewValidator()
	v.Required("status", status, "is required")
	v.Enum("status", status, Statuses, "must be one of open, in-progress, resolved, closed")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	t, err := h.Store.Get(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "ticket_not_found", "ticket not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "ticket_update_failed", "failed to update ticket", middleware.GetRequestID(r.Context()))
		return
	}

	if !caller.IsAdmin() {
		owner, err := h.Directory.OwnerUserID(r.Context(), t.EmployeeID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		if err := authz.Authorize(caller, owner); err != nil {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to update this ticket", middleware.GetRequestID(r.Context()))
			return
		}
		if status != StatusClosed {
			api.Fail(w, http.StatusForbidden, "forbidden", "employees may only close their own tickets", middleware.GetRequestID(r.Context()))
			return
		}
	}

	updated, err := h.Store.UpdateStatus(r.Context(), t.ID, status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "ticket_update_failed", "failed to update ticket", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if err := authz.RequireRole(caller, authz.RoleAdmin); err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "ticketID")); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "ticket_not_found", "ticket not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "ticket_delete_failed", "failed to delete ticket", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

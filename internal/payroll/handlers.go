package payroll

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

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
	r.Route("/payroll", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/summary", h.handleSummary)
		r.Get("/{recordID}", h.handleGet)
		r.Put("/{recordID}", h.handleUpdate)
		r.Delete("/{recordID}", h.handleDelete)
		r.Get("/{recordID}/payslip", h.handlePayslip)
	})
}

type moneyLinePayload struct {
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
}

type overtimePayload struct {
	Hours  *float64 `json:"hours"`
	Rate   *float64 `json:"rate"`
	Amount *float64 `json:"amount"`
}

type createRecordPayload struct {
	EmployeeID    string             `json:"employeeId"`
	WeekStartDate string             `json:"weekStartDate"`
	WeekEndDate   string             `json:"weekEndDate"`
	BasicSalary   *float64           `json:"basicSalary"`
	Overtime      *overtimePayload   `json:"overtime"`
	Bonuses       []moneyLinePayload `json:"bonuses"`
	Deductions    []moneyLinePayload `json:"deductions"`
	PaymentMethod string             `json:"paymentMethod"`
	Notes         string             `json:"notes"`
}

func collectLines(v *shared.Validator, field string, payload []moneyLinePayload) []MoneyLine {
	lines := make([]MoneyLine, 0, len(payload))
	for _, line := range payload {
		if strings.TrimSpace(line.Description) == "" {
			v.Add(field, "every line needs a description")
			continue
		}
		if line.Amount == nil {
			v.Add(field, "every line needs an amount")
			continue
		}
		if *line.Amount < 0 {
			v.Add(field, "amounts must not be negative")
			continue
		}
		lines = append(lines, MoneyLine{Description: line.Description, Amount: *line.Amount})
	}
	return lines
}

func collectOvertime(v *shared.Validator, payload *overtimePayload) Overtime {
	if payload == nil {
		return Overtime{}
	}
	var ot Overtime
	if payload.Hours != nil {
		ot.Hours = *payload.Hours
	}
	if payload.Rate != nil {
		ot.Rate = *payload.Rate
	}
	if payload.Amount != nil {
		ot.Amount = *payload.Amount
	}
	v.NonNegative("overtime.hours", ot.Hours)
	v.NonNegative("overtime.rate", ot.Rate)
	v.NonNegative("overtime.amount", ot.Amount)
	return ot
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload createRecordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("weekStartDate", payload.WeekStartDate, "is required")
	v.Required("weekEndDate", payload.WeekEndDate, "is required")
	if payload.BasicSalary == nil {
		v.Add("basicSalary", "is required")
	} else {
		v.NonNegative("basicSalary", *payload.BasicSalary)
	}
	var weekStart, weekEnd time.Time
	if strings.TrimSpace(payload.WeekStartDate) != "" {
		weekStart, _ = v.Date("weekStartDate", payload.WeekStartDate)
	}
	if strings.TrimSpace(payload.WeekEndDate) != "" {
		weekEnd, _ = v.Date("weekEndDate", payload.WeekEndDate)
	}
	v.DateOrder("weekStartDate", weekStart, "weekEndDate", weekEnd)
	overtime := collectOvertime(v, payload.Overtime)
	bonuses := collectLines(v, "bonuses", payload.Bonuses)
	deductions := collectLines(v, "deductions", payload.Deductions)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	rec, err := h.Service.Create(r.Context(), caller, CreateParams{
		EmployeeID:    payload.EmployeeID,
		WeekStartDate: weekStart,
		WeekEndDate:   weekEnd,
		BasicSalary:   *payload.BasicSalary,
		Overtime:      overtime,
		Bonuses:       bonuses,
		Deductions:    deductions,
		PaymentMethod: payload.PaymentMethod,
		Notes:         payload.Notes,
	})
	if err != nil {
		h.writeError(w, r, err, "payroll_create_failed", "failed to create payment record")
		return
	}
	api.Created(w, rec, middleware.GetRequestID(r.Context()))
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
		v.Enum("status", status, Statuses, "must be one of pending, paid, cancelled")
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
	}

	p := shared.ParsePagination(r, 50, 200)
	list, err := h.Service.List(r.Context(), caller, ListFilter{
		EmployeeID:    r.URL.Query().Get("employeeId"),
		PaymentStatus: status,
		Limit:         p.Limit,
		Offset:        p.Offset,
	})
	if err != nil {
		h.writeError(w, r, err, "payroll_list_failed", "failed to list payment records")
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	summary, err := h.Service.Summary(r.Context(), caller, r.URL.Query().Get("employeeId"))
	if err != nil {
		h.writeError(w, r, err, "payroll_summary_failed", "failed to summarize payment records")
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Service.Get(r.Context(), caller, chi.URLParam(r, "recordID"))
	if err != nil {
		h.writeError(w, r, err, "payroll_get_failed", "failed to load payment record")
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

type updateRecordPayload struct {
	BasicSalary   *float64            `json:"basicSalary"`
	Overtime      *overtimePayload    `json:"overtime"`
	Bonuses       *[]moneyLinePayload `json:"bonuses"`
	Deductions    *[]moneyLinePayload `json:"deductions"`
	PaymentStatus *string             `json:"paymentStatus"`
	PaymentMethod *string             `json:"paymentMethod"`
	Notes         *string             `json:"notes"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload updateRecordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	params := UpdateParams{
		BasicSalary:   payload.BasicSalary,
		PaymentMethod: payload.PaymentMethod,
		Notes:         payload.Notes,
	}
	if payload.BasicSalary != nil {
		v.NonNegative("basicSalary", *payload.BasicSalary)
	}
	if payload.Overtime != nil {
		ot := collectOvertime(v, payload.Overtime)
		params.Overtime = &ot
	}
	if payload.Bonuses != nil {
		bonuses := collectLines(v, "bonuses", *payload.Bonuses)
		params.Bonuses = &bonuses
	}
	if payload.Deductions != nil {
		deductions := collectLines(v, "deductions", *payload.Deductions)
		params.Deductions = &deductions
	}
	if payload.PaymentStatus != nil {
		v.Required("paymentStatus", *payload.PaymentStatus, "must not be empty")
		v.Enum("paymentStatus", *payload.PaymentStatus, Statuses, "must be one of pending, paid, cancelled")
		params.PaymentStatus = payload.PaymentStatus
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	rec, err := h.Service.Update(r.Context(), caller, chi.URLParam(r, "recordID"), params)
	if err != nil {
		h.writeError(w, r, err, "payroll_update_failed", "failed to update payment record")
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Delete(r.Context(), caller, chi.URLParam(r, "recordID")); err != nil {
		h.writeError(w, r, err, "payroll_delete_failed", "failed to delete payment record")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Service.Get(r.Context(), caller, chi.URLParam(r, "recordID"))
	if err != nil {
		h.writeError(w, r, err, "payslip_failed", "failed to load payment record")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="payslip-`+rec.WeekStartDate.Format("2006-01-02")+`.pdf"`)
	if err := WritePayslipPDF(w, rec); err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, genericCode, genericMsg string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, authz.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, ErrNotFound):
		api.Fail(w, http.StatusNotFound, "record_not_found", "payment record not found", requestID)
	case errors.Is(err, ErrDuplicateWeek):
		api.Fail(w, http.StatusConflict, "duplicate_week", "a record for this employee and week already exists", requestID)
	case errors.Is(err, ErrInvalidWeek):
		api.Fail(w, http.StatusBadRequest, "invalid_week", "week end must not precede week start", requestID)
	case errors.Is(err, ErrInvalidAmount):
		api.Fail(w, http.StatusBadRequest, "invalid_amount", "amounts must not be negative", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, genericCode, genericMsg, requestID)
	}
}

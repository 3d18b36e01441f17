package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workforce/internal/authz"
)

type StoreAPI interface {
	Create(ctx context.Context, rec *PaymentRecord) error
	Get(ctx context.Context, recordID string) (*PaymentRecord, error)
	ExistsForWeek(ctx context.Context, employeeID string, weekStart, weekEnd time.Time) (bool, error)
	Update(ctx context.Context, rec *PaymentRecord) error
	MarkViewed(ctx context.Context, recordID string, at time.Time) error
	Delete(ctx context.Context, recordID string) error
	List(ctx context.Context, filter ListFilter) ([]PaymentRecord, error)
	Summary(ctx context.Context, employeeID string) ([]StatusSummary, error)
}

type Directory interface {
	EmployeeIDByUser(ctx context.Context, userID string) (string, error)
	OwnerUserID(ctx context.Context, employeeID string) (string, error)
	ContactEmail(ctx context.Context, employeeID string) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store     StoreAPI
	directory Directory
	mailer    Mailer
	emailFrom string
	now       func() time.Time
}

func NewService(store StoreAPI, directory Directory, mailer Mailer, emailFrom string) *Service {
	return &Service{store: store, directory: directory, mailer: mailer, emailFrom: emailFrom, now: time.Now}
}

type CreateParams struct {
	EmployeeID    string
	WeekStartDate time.Time
	WeekEndDate   time.Time
	BasicSalary   float64
	Overtime      Overtime
	Bonuses       []MoneyLine
	Deductions    []MoneyLine
	PaymentMethod string
	Notes         string
}

func validateAmounts(basic float64, overtime Overtime, bonuses, deductions []MoneyLine) error {
	if basic < 0 || overtime.Hours < 0 || overtime.Rate < 0 || overtime.Amount < 0 {
		return ErrInvalidAmount
	}
	for _, line := range bonuses {
		if line.Amount < 0 {
			return ErrInvalidAmount
		}
	}
	for _, line := range deductions {
		if line.Amount < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// Create inserts one week's payment record, admin only. The duplicate-week
// pre-check is advisory; the unique constraint in storage closes the
// create/create race.
func (s *Service) Create(ctx context.Context, caller authz.Caller, params CreateParams) (*PaymentRecord, error) {
	if err := authz.RequireRole(caller, authz.RoleAdmin); err != nil {
		return nil, err
	}
	if params.WeekEndDate.Before(params.WeekStartDate) {
		return nil, ErrInvalidWeek
	}
	if err := validateAmounts(params.BasicSalary, params.Overtime, params.Bonuses, params.Deductions); err != nil {
		return nil, err
	}

	// Resolving the owner doubles as an existence check on the employee.
	if _, err := s.directory.OwnerUserID(ctx, params.EmployeeID); err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsForWeek(ctx, params.EmployeeID, params.WeekStartDate, params.WeekEndDate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateWeek
	}

	now := s.now()
	rec := &PaymentRecord{
		EmployeeID:    params.EmployeeID,
		WeekStartDate: params.WeekStartDate,
		WeekEndDate:   params.WeekEndDate,
		BasicSalary:   params.BasicSalary,
		Overtime:      params.Overtime,
		Bonuses:       params.Bonuses,
		Deductions:    params.Deductions,
		PaymentStatus: StatusPending,
		PaymentMethod: params.PaymentMethod,
		Notes:         params.Notes,
		CreatedBy:     caller.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	Recompute(rec)

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.notifyCreated(ctx, rec)
	return rec, nil
}

func (s *Service) notifyCreated(ctx context.Context, rec *PaymentRecord) {
	if s.mailer == nil {
		return
	}
	to, err := s.directory.ContactEmail(ctx, rec.EmployeeID)
	if err != nil {
		slog.Warn("payroll notification skipped", "employeeId", rec.EmployeeID, "err", err)
		return
	}
	subject := "New payment record available"
	body := fmt.Sprintf(
		"A payment record for the week %s to %s has been published.\nNet pay: %.2f",
		rec.WeekStartDate.Format("2006-01-02"), rec.WeekEndDate.Format("2006-01-02"), rec.NetPay,
	)
	if err := s.mailer.Send(ctx, s.emailFrom, to, subject, body); err != nil {
		slog.Warn("payroll notification failed", "employeeId", rec.EmployeeID, "err", err)
	}
}

type UpdateParams struct {
	BasicSalary   *float64
	Overtime      *Overtime
	Bonuses       *[]MoneyLine
	Deductions    *[]MoneyLine
	PaymentStatus *string
	PaymentMethod *string
	Notes         *string
}

// Update applies a partial edit, admin only. Derived totals are recomputed
// after the edit; moving to paid stamps the payment date, moving away from
// paid keeps it.
func (s *Service) Update(ctx context.Context, caller authz.Caller, recordID string, params UpdateParams) (*PaymentRecord, error) {
	if err := authz.RequireRole(caller, authz.RoleAdmin); err != nil {
		return nil, err
	}

	rec, err := s.store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if params.BasicSalary != nil {
		rec.BasicSalary = *params.BasicSalary
	}
	if params.Overtime != nil {
		rec.Overtime = *params.Overtime
	}
	if params.Bonuses != nil {
		rec.Bonuses = *params.Bonuses
	}
	if params.Deductions != nil {
		rec.Deductions = *params.Deductions
	}
	if params.PaymentMethod != nil {
		rec.PaymentMethod = *params.PaymentMethod
	}
	if params.Notes != nil {
		rec.Notes = *params.Notes
	}
	if err := validateAmounts(rec.BasicSalary, rec.Overtime, rec.Bonuses, rec.Deductions); err != nil {
		return nil, err
	}

	now := s.now()
	if params.PaymentStatus != nil && *params.PaymentStatus != rec.PaymentStatus {
		if *params.PaymentStatus == StatusPaid {
			rec.PaymentDate = &now
		}
		rec.PaymentStatus = *params.PaymentStatus
	}

	Recompute(rec)
	rec.UpdatedAt = now
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns one record to an authorized caller. An employee reading their
// own record for the first time marks it viewed; subsequent reads are no-ops.
func (s *Service) Get(ctx context.Context, caller authz.Caller, recordID string) (*PaymentRecord, error) {
	rec, err := s.store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	owner, err := s.directory.OwnerUserID(ctx, rec.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, owner); err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && !rec.IsViewed {
		if err := s.store.MarkViewed(ctx, recordID, s.now()); err != nil {
			return nil, err
		}
		// MarkViewed is guarded on is_viewed; a racing first read may have won,
		// so re-read rather than stamp the local copy.
		rec, err = s.store.Get(ctx, recordID)
		if err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, caller authz.Caller, recordID string) error {
	if err := authz.RequireRole(caller, authz.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.store.Get(ctx, recordID); err != nil {
		return err
	}
	return s.store.Delete(ctx, recordID)
}

func (s *Service) List(ctx context.Context, caller authz.Caller, filter ListFilter) ([]PaymentRecord, error) {
	scoped, err := s.scopeEmployee(ctx, caller, filter.EmployeeID)
	if err != nil {
		return nil, err
	}
	filter.EmployeeID = scoped
	return s.store.List(ctx, filter)
}

// Summary aggregates counts and net pay grouped by payment status, scoped to
// all records for admins and to the caller's own employee otherwise.
func (s *Service) Summary(ctx context.Context, caller authz.Caller, employeeID string) ([]StatusSummary, error) {
	scoped, err := s.scopeEmployee(ctx, caller, employeeID)
	if err != nil {
		return nil, err
	}
	return s.store.Summary(ctx, scoped)
}

func (s *Service) scopeEmployee(ctx context.Context, caller authz.Caller, requested string) (string, error) {
	if caller.IsAdmin() {
		return requested, nil
	}
	return s.directory.EmployeeIDByUser(ctx, caller.UserID)
}

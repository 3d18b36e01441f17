package payroll

import "errors"

var (
	ErrNotFound      = errors.New("payment record not found")
	ErrDuplicateWeek = errors.New("payment record already exists for this employee and week period")
	ErrInvalidAmount = errors.New("amounts must not be negative")
	ErrInvalidWeek   = errors.New("week end date must not be before week start date")
)

package payroll

import "time"

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusPending, StatusPaid, StatusCancelled}

type MoneyLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type Overtime struct {
	Hours  float64 `json:"hours"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// PaymentRecord is one weekly pay computation for one employee. The triple
// (employeeId, weekStartDate, weekEndDate) is unique; grossPay,
// totalDeductions and netPay are derived and recomputed on every write.
type PaymentRecord struct {
	ID              string      `json:"id"`
	EmployeeID      string      `json:"employeeId"`
	WeekStartDate   time.Time   `json:"weekStartDate"`
	WeekEndDate     time.Time   `json:"weekEndDate"`
	BasicSalary     float64     `json:"basicSalary"`
	Overtime        Overtime    `json:"overtime"`
	Bonuses         []MoneyLine `json:"bonuses"`
	Deductions      []MoneyLine `json:"deductions"`
	GrossPay        float64     `json:"grossPay"`
	TotalDeductions float64     `json:"totalDeductions"`
	NetPay          float64     `json:"netPay"`
	PaymentStatus   string      `json:"paymentStatus"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	PaymentDate     *time.Time  `json:"paymentDate,omitempty"`
	CreatedBy       string      `json:"createdBy,omitempty"`
	IsViewed        bool        `json:"isViewed"`
	ViewedAt        *time.Time  `json:"viewedAt,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type StatusSummary struct {
	PaymentStatus string  `json:"paymentStatus"`
	Count         int     `json:"count"`
	TotalNet      float64 `json:"totalNet"`
}

type ListFilter struct {
	EmployeeID    string
	PaymentStatus string
	Limit         int
	Offset        int
}

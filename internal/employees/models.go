package employees

import "time"

const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusOnLeave    = "on-leave"
	StatusTerminated = "terminated"
)

var Statuses = []string{StatusActive, StatusInactive, StatusOnLeave, StatusTerminated}

type Employee struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	EmployeeCode string     `json:"employeeCode"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Position     string     `json:"position,omitempty"`
	Department   string     `json:"department,omitempty"`
	Status       string     `json:"status"`
	JoinedAt     *time.Time `json:"joinedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

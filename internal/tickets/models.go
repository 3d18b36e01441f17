package tickets

import "time"

const (
	StatusOpen       = "open"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

var Statuses = []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

var Priorities = []string{"low", "medium", "high"}

type Ticket struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

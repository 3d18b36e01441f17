package attendance

import "time"

const (
	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"
)

// Location is one check-in session: created at check-in, mutated by live
// updates while open, closed by check-out and immutable afterwards.
type Location struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	Address      string     `json:"address,omitempty"`
	Device       string     `json:"device,omitempty"`
	ClientIP     string     `json:"clientIp,omitempty"`
	Accuracy     *float64   `json:"accuracy,omitempty"`
	CheckInTime  time.Time  `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
	Status       string     `json:"status"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

package attendance

import "errors"

var (
	ErrNotFound           = errors.New("attendance record not found")
	ErrAlreadyCheckedIn   = errors.New("employee already has an open check-in session")
	ErrSessionClosed      = errors.New("session is not checked-in")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Package authz is the single authorization decision point. Every operation
// consults it instead of re-implementing role branching inline.
package authz

import "errors"

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

var ErrForbidden = errors.New("forbidden")

// Caller is the resolved identity of an authenticated request.
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Authorize allows admins unconditionally and non-admins only when they are
// the owner of the resource. Pure decision, no side effects.
func Authorize(caller Caller, ownerUserID string) error {
	if caller.Role == RoleAdmin {
		return nil
	}
	if caller.UserID != "" && caller.UserID == ownerUserID {
		return nil
	}
	return ErrForbidden
}

// RequireRole gates operations restricted to a single role regardless of
// ownership.
func RequireRole(caller Caller, role string) error {
	if caller.Role != role {
		return ErrForbidden
	}
	return nil
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

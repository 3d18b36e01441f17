package authz

import (
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		caller  Caller
		owner   string
		wantErr bool
	}{
		{
			name:   "admin may access any resource",
			caller: Caller{UserID: "admin-1", Role: RoleAdmin},
			owner:  "user-2",
		},
		{
			name:   "employee may access own resource",
			caller: Caller{UserID: "user-1", Role: RoleEmployee},
			owner:  "user-1",
		},
		{
			name:    "employee denied on another user's resource",
			caller:  Caller{UserID: "user-1", Role: RoleEmployee},
			owner:   "user-2",
			wantErr: true,
		},
		{
			name:    "empty caller id never matches empty owner",
			caller:  Caller{UserID: "", Role: RoleEmployee},
			owner:   "",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.caller, tc.owner)
			if tc.wantErr {
				if !errors.Is(err, ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin := Caller{UserID: "u1", Role: RoleAdmin}
	employee := Caller{UserID: "u2", Role: RoleEmployee}

	if err := RequireRole(admin, RoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RequireRole(employee, RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := RequireRole(admin, RoleEmployee); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin on employee-only operation, got %v", err)
	}
}

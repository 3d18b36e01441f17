package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workforce/internal/auth"
	"workforce/internal/authz"
)

func TestAuthAttachesCaller(t *testing.T) {
	token, err := auth.GenerateToken("secret", auth.Claims{UserID: "user-1", Role: authz.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var caller authz.Caller
	var ok bool
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok = GetCaller(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("expected caller in context")
	}
	if caller.UserID != "user-1" || caller.Role != authz.RoleEmployee {
		t.Fatalf("unexpected caller: %+v", caller)
	}
}

func TestAuthInvalidTokenIsAnonymous(t *testing.T) {
	var ok bool
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = GetCaller(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Fatal("expected no caller for invalid token")
	}
}

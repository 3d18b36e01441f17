package accounts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/api"
	"workforce/internal/auth"
	"workforce/internal/authz"
	"workforce/internal/middleware"
)

func newTestRouter(h *Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth("test-secret"))
	h.RegisterRoutes(router)
	return router
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	return env
}

func TestSignupDisabled(t *testing.T) {
	h := NewHandler(&Store{}, nil, "test-secret", time.Hour, false)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"email":"a@b.c"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "signup_disabled" {
		t.Fatalf("expected signup_disabled, got %+v", env.Error)
	}
}

func TestSignupValidation(t *testing.T) {
	h := NewHandler(&Store{}, nil, "test-secret", time.Hour, true)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(`{"email":"a@b.c","password":"short"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
}

func TestLoginRejectsMalformedPayload(t *testing.T) {
	h := NewHandler(&Store{}, nil, "test-secret", time.Hour, false)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMeRequiresAuthentication(t *testing.T) {
	h := NewHandler(&Store{}, nil, "test-secret", time.Hour, false)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestBearerTokenReachesHandlers(t *testing.T) {
	token, err := auth.GenerateToken("test-secret", auth.Claims{UserID: "user-1", Role: authz.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := NewHandler(&Store{}, nil, "test-secret", time.Hour, false)
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth("test-secret"))
	var caller authz.Caller
	var ok bool
	router.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		caller, ok = middleware.GetCaller(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if !ok || caller.UserID != "user-1" || caller.Role != authz.RoleEmployee {
		t.Fatalf("expected caller from token, got ok=%v caller=%+v", ok, caller)
	}
}

package employees

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

func adminRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken("test-secret", auth.Claims{UserID: "user-admin", Role: authz.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUpdateRejectsEmptyStatus(t *testing.T) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth("test-secret"))
	NewHandler(&Store{}).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(t, http.MethodPut, "/employees/emp-1", `{"status":""}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty status, got %d", rec.Code)
	}
	var env api.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth("test-secret"))
	NewHandler(&Store{}).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, adminRequest(t, http.MethodPut, "/employees/emp-1", `{"status":"retired"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

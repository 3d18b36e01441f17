package payroll

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

func TestUpdateRejectsEmptyPaymentStatus(t *testing.T) {
	svc, _, _ := newTestService()
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth("test-secret"))
	NewHandler(svc).RegisterRoutes(router)

	token, err := auth.GenerateToken("test-secret", auth.Claims{UserID: "user-admin", Role: authz.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/payroll/rec-1", strings.NewReader(`{"paymentStatus":""}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty paymentStatus, got %d", rec.Code)
	}
	var env api.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.Error == nil || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
}

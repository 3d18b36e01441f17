package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"workforce/internal/accounts"
	"workforce/internal/api"
	"workforce/internal/attendance"
	"workforce/internal/config"
	"workforce/internal/db"
	"workforce/internal/documents"
	"workforce/internal/employees"
	"workforce/internal/middleware"
	"workforce/internal/payroll"
	"workforce/internal/platform/email"
	"workforce/internal/platform/metrics"
	"workforce/internal/tickets"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	collector := metrics.New()
	mailer := email.New(cfg)

	userStore := accounts.NewStore(pool)
	employeeStore := employees.NewStore(pool)
	attendanceService := attendance.NewService(attendance.NewStore(pool), employeeStore)
	payrollService := payroll.NewService(payroll.NewStore(pool), employeeStore, mailer, cfg.EmailFrom)
	documentStore := documents.NewStore(pool)
	ticketStore := tickets.NewStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(maxBody(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		accountsHandler := accounts.NewHandler(userStore, employeeStore, cfg.JWTSecret, cfg.TokenTTL, cfg.AllowSelfSignup)
		accountsHandler.RegisterRoutes(r)

		employeeHandler := employees.NewHandler(employeeStore)
		employeeHandler.RegisterRoutes(r)

		attendanceHandler := attendance.NewHandler(attendanceService)
		attendanceHandler.RegisterRoutes(r)

		payrollHandler := payroll.NewHandler(payrollService)
		payrollHandler.RegisterRoutes(r)

		documentHandler := documents.NewHandler(documentStore, employeeStore, cfg.DocumentStorageDir)
		documentHandler.RegisterRoutes(r)

		ticketHandler := tickets.NewHandler(ticketStore, employeeStore)
		ticketHandler.RegisterRoutes(r)
	})

	log.Printf("workforce server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func maxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

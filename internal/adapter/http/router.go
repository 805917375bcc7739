package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/VineetPaun/expense-management/internal/adapter/http/handler"
	"github.com/VineetPaun/expense-management/internal/adapter/http/middleware"
	"github.com/VineetPaun/expense-management/internal/infrastructure/metrics"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler *handler.AccountHandler
	EntryHandler   *handler.EntryHandler
	AuthHandler    *handler.AuthHandler
	LedgerHandler  *handler.LedgerHandler
	HealthHandler  *handler.HealthHandler

	// Verifier authenticates everything under /api/v1 except register and login.
	Verifier middleware.TokenVerifier

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.Verifier))

			// Keys are scoped per user, so this runs after authentication.
			if cfg.IdempotencyStore != nil {
				ttl := cfg.IdempotencyTTL
				if ttl <= 0 {
					ttl = usecase.IdempotencyKeyTTL
				}
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, ttl, cfg.Logger).Wrap)
			}

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.Create)
				r.Get("/", cfg.AccountHandler.List)
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Patch("/{id}", cfg.AccountHandler.Update)
				r.Delete("/{id}", cfg.AccountHandler.Deactivate)
				r.Get("/{id}/transactions", cfg.EntryHandler.ListByAccount)
				r.Post("/{id}/reconcile", cfg.LedgerHandler.Reconcile)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", cfg.EntryHandler.Create)
				r.Get("/{id}", cfg.EntryHandler.Get)
				r.Put("/{id}", cfg.EntryHandler.Update)
				r.Delete("/{id}", cfg.EntryHandler.Delete)
			})

			r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Get("/audit-logs", cfg.AccountHandler.AuditLogs)
		})
	})

	return r
}

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/agentpay/agentledger/internal/adapter/http/handler"
	"github.com/agentpay/agentledger/internal/adapter/http/middleware"
	"github.com/agentpay/agentledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler    *handler.LedgerHandler
	ChargeHandler    *handler.ChargeHandler
	DeliveryHandler  *handler.DeliveryHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Retried POSTs must not double-charge
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Get("/balance", cfg.LedgerHandler.GetBalance)
		r.Post("/deposit", cfg.LedgerHandler.Deposit)
		r.Get("/fund", cfg.LedgerHandler.Fund)
		r.Post("/fund", cfg.LedgerHandler.Fund)
		r.Post("/spend", cfg.LedgerHandler.Spend)

		r.Post("/charges", cfg.ChargeHandler.Charge)

		r.Route("/deliveries", func(r chi.Router) {
			r.Post("/quotes", cfg.DeliveryHandler.Quote)
			r.Post("/quotes/{id}/confirm", cfg.DeliveryHandler.Confirm)
			r.Get("/{id}", cfg.DeliveryHandler.Status)
			r.Delete("/{id}", cfg.DeliveryHandler.Cancel)
		})
	})

	return r
}

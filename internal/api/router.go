package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Stock-Portfolio-Tracker/internal/api/middleware"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/config"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/service"
)

// Services bundles the services the HTTP layer serves.
// Refresh is nil when no quote provider is configured.
type Services struct {
	System    *service.SystemService
	Portfolio *service.PortfolioService
	Refresh   *service.RefreshService
	Export    *service.ExportService
	Alert     *service.AlertService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio, svc.Refresh, svc.Export)
			r.Get("/", portfolioHandler.Portfolio)
			r.Get("/monthly", portfolioHandler.Monthly)
			r.Post("/holding", portfolioHandler.AddHolding)
			r.Post("/refresh", portfolioHandler.Refresh)
			r.Post("/export", portfolioHandler.Export)
		})

		r.Route("/alerts", func(r chi.Router) {
			alertHandler := handlers.NewAlertHandler(svc.Alert)
			r.Get("/", alertHandler.Alerts)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", alertHandler.GetAlert)
			})
		})
	})

	return r
}

// Package server provides HTTP server management and lifecycle handling for the
// HemoCore console. It includes middleware configuration, route management and
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hemocore/console/config"
	"github.com/hemocore/console/handlers"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler *handlers.HTTPHandler
	config  *config.Config
	limiter *RateLimiter
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler *handlers.HTTPHandler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		handler: handler,
		config:  cfg,
		limiter: NewRateLimiter(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	if s.config.Env == "prod" {
		s.router.Use(BlockDirectAccessMiddleware) // Put BEFORE RealIPMiddleware to see original RemoteAddr
	}
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.RequestLogger(logging.Logger()))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json", "text/csv"))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Middleware)
	s.router.Use(BearerTokenMiddleware)
	s.router.Use(RequireBearerTokenMiddleware)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.handler

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusNotFound, "Route not found: "+r.URL.Path)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.CurrentUser)
	})

	// Resources proxied to the HemoCore API
	s.router.Mount("/patients", h.PatientRoutes())
	s.router.Mount("/visits", h.VisitRoutes())
	s.router.Mount("/factors", h.FactorRoutes())
	s.router.Mount("/companies", h.CompanyRoutes())
	s.router.Mount("/treatments", h.TreatmentRoutes())
	s.router.Mount("/cellphone-treatments", h.CellPhoneTreatmentRoutes())
	s.router.Mount("/distributions", h.DistributionRoutes())

	// Views computed from the snapshot
	s.router.Get("/dashboard", h.ServeDashboard)
	s.router.Get("/alerts/low-stock", h.ServeLowStock)
	s.router.Get("/alerts/expiring", h.ServeExpiring)
	s.router.Route("/reports", func(r chi.Router) {
		r.Get("/states", h.ServeStateReport)
		r.Get("/companies", h.ServeCompanyReport)
		r.Get("/monthly-treatments", h.ServeMonthlyTreatments)
		r.Get("/treatment-types", h.ServeTreatmentTypes)
		r.Get("/factor-categories", h.ServeFactorCategories)
		r.Get("/expiry-status", h.ServeExpiryStatus)
		r.Get("/distribution-states", h.ServeDistributionStates)
		r.Get("/service-types", h.ServeServiceTypes)
	})
	s.router.Get("/snapshot", h.ServeSnapshot)
	s.router.Post("/snapshot/refresh", h.RefreshSnapshot)
	s.router.Get("/export/{dataset}", h.ServeExport)

	s.router.Get("/health", h.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.limiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mechanix/shop-reports/internal/config"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/metrics"
	"github.com/mechanix/shop-reports/internal/platform/observability/tracing"
	"github.com/mechanix/shop-reports/internal/transport/http/handlers"
	custommiddleware "github.com/mechanix/shop-reports/internal/transport/http/middleware"
)

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	router        *chi.Mux
	logger        logging.Logger
	metrics       metrics.Metrics
	tracer        tracing.Tracer
	reportHandler *handlers.ReportHandler
	healthHandler *HealthHandler
	config        *config.APIConfig
	dbStats       func() map[string]interface{}
}

// NewServer creates a new HTTP server. dbStats feeds database pool
// statistics into the metrics snapshot and may be nil.
func NewServer(
	cfg *config.APIConfig,
	reportHandler *handlers.ReportHandler,
	healthHandler *HealthHandler,
	tracer tracing.Tracer,
	logger logging.Logger,
	m metrics.Metrics,
	dbStats func() map[string]interface{},
) *Server {
	server := &Server{
		logger:        logger,
		metrics:       m,
		tracer:        tracer,
		reportHandler: reportHandler,
		healthHandler: healthHandler,
		config:        cfg,
		dbStats:       dbStats,
	}

	server.setupRoutes()
	server.setupServer()

	return server
}

// setupRoutes configures all routes and middleware
func (s *Server) setupRoutes() {
	s.router = chi.NewRouter()

	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Timeout(30 * time.Second))

	s.router.Use(custommiddleware.Logging(s.logger))
	s.router.Use(custommiddleware.Tracing(s.tracer))
	s.router.Use(custommiddleware.Metrics(s.metrics))
	s.router.Use(custommiddleware.Recovery(s.logger))
	s.router.Use(custommiddleware.CORS(s.config.CORSOrigins))
	s.router.Use(custommiddleware.ContentType())

	s.router.Get("/health_check", s.healthHandler.HealthCheck)
	s.router.Get("/live", s.healthHandler.Liveness)
	s.router.Get("/ready", s.healthHandler.HealthCheck)
	s.router.Get("/openapi.json", OpenAPIHandler)

	if !s.config.Observability.Production() {
		s.router.Get("/metrics", s.handleMetrics)
	}

	s.router.Route("/api/reports", func(r chi.Router) {
		r.Use(custommiddleware.RateLimit(s.config.RateLimit.Window, s.config.RateLimit.Max))

		r.Get("/available-months", s.reportHandler.GetAvailableMonths)
		r.Post("/generate", s.reportHandler.GenerateReport)
		r.Get("/monthly/{year}/{month}", s.reportHandler.GetMonthlyReport)
	})
}

// setupServer configures the HTTP server
func (s *Server) setupServer() {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting HTTP server", map[string]interface{}{
		"address": s.server.Addr,
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info(ctx, "Stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info(ctx, "HTTP server stopped")
	return nil
}

// Router returns the router for testing purposes
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleMetrics dumps the in-memory metrics snapshot. Non-production only.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.metrics.(interface{ GetMetrics() map[string]interface{} })
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"metrics not available"}`))
		return
	}

	payload := map[string]interface{}{
		"service":   s.config.Observability.ServiceName,
		"metrics":   snapshot.GetMetrics(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if s.dbStats != nil {
		payload["database"] = s.dbStats()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}

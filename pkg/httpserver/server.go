package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mselser95/predict-account/pkg/healthprobe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server provides the HTTP API: trade dispatch, account management,
// portfolio reads, the websocket event feed, and operational endpoints.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration and handler dependencies.
type Config struct {
	Port          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker
	Handlers      *Handlers

	// EventFeed serves GET /ws/events when set.
	EventFeed http.HandlerFunc
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	if cfg.EventFeed != nil {
		r.Get("/ws/events", cfg.EventFeed)
	}

	if h := cfg.Handlers; h != nil {
		r.Route("/api", func(r chi.Router) {
			r.Post("/trade", h.HandleTrade)
			r.Get("/trades", h.HandleListTrades)
			r.Get("/trades/{id}", h.HandleGetTrade)

			r.Get("/markets", h.HandleListMarkets)

			r.Route("/accounts", func(r chi.Router) {
				r.Post("/", h.HandleCreateAccount)
				r.Get("/", h.HandleListAccounts)
				r.Get("/{id}", h.HandleGetAccount)
				r.Put("/{id}", h.HandleUpdateAccount)
				r.Delete("/{id}", h.HandleDeleteAccount)
				r.Get("/{id}/positions", h.HandlePositions)
				r.Get("/{id}/orders", h.HandleOrders)
				r.Get("/{id}/close-plan", h.HandleClosePlan)
			})
		})
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server:        server,
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// Handler exposes the router, used in tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}

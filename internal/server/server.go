// Package server serves the sentiment dashboard over HTTP: a rendered
// chart page, a JSON API over the classified record set, and Prometheus
// metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Config holds the dashboard server configuration.
type Config struct {
	Addr         string
	Window       model.Window
	Demo         bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8050",
		Window:       model.WindowDay,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Server is the dashboard HTTP server. It reads the store, never
// writes it.
type Server struct {
	store   service.Store
	metrics *metrics
	router  *gin.Engine
	config  Config
}

// New creates a dashboard server around the given store.
func New(store service.Store, config Config) *Server {
	if config.Addr == "" {
		config.Addr = ":8050"
	}
	if config.Window == "" {
		config.Window = model.WindowDay
	}

	// Respect an explicit GIN_MODE, default to release
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		store:   store,
		config:  config,
		metrics: newMetrics(store),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(s.metrics.middleware())

	router.GET("/", s.handleDashboard)
	router.GET("/healthz", s.handleHealthz)
	router.GET("/metrics", s.metrics.handler())

	api := router.Group("/api")
	{
		api.GET("/summary", s.handleSummary)
		api.GET("/buckets", s.handleBuckets)
		api.GET("/records", s.handleRecords)
	}

	s.router = router
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until ctx is canceled, then shuts it down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Dashboard listening", "addr", s.config.Addr, "demo", s.config.Demo)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("dashboard server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}

	slog.Info("Dashboard stopped")
	return nil
}

// requestLogger logs requests through slog like the rest of the app.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	}
}

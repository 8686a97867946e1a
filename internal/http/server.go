// Package http provides the relay HTTP server, its middleware and the
// separate metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authRequestHTTP "github.com/allisson/vaultkeys/internal/authrequest/http"
	"github.com/allisson/vaultkeys/internal/config"
	"github.com/allisson/vaultkeys/internal/metrics"
)

// Server represents the relay HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a new HTTP server. The router is installed by SetupRouter.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: newHTTPServer(host, port, nil),
	}
}

// SetupRouter builds the gin engine: health endpoints plus the auth request
// relay under /v1/auth-requests. rateLimitCtx stops the limiter's cleanup
// goroutine. metricsProvider may be nil.
func (s *Server) SetupRouter(
	rateLimitCtx context.Context,
	cfg *config.Config,
	authRequestHandler *authRequestHTTP.AuthRequestHandler,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	authRequests := v1.Group("/auth-requests")
	if cfg.RateLimitEnabled {
		authRequests.Use(RateLimitMiddleware(rateLimitCtx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	var responderGuards []gin.HandlerFunc
	if guard := ResponderTokenMiddleware(cfg.RelayResponderToken, s.logger); guard != nil {
		responderGuards = append(responderGuards, guard)
	}
	authRequestHandler.RegisterRoutes(authRequests, responderGuards...)

	s.router = router
}

// GetHandler returns the router installed by SetupRouter, or nil.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("failed to start server: router is not configured")
	}
	s.server.Handler = s.router
	return listen(s.server, s.logger, "http server")
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	if s.db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness database ping failed", slog.Any("error", err))
			database = "error"
		}
	}

	if database != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": database},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": database},
	})
}

// Package http provides HTTP server implementation and request handlers.
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

	authHTTP "github.com/allisson/authgate/internal/auth/http"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/metrics"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency probed by the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the API HTTP server.
type Server struct {
	db           *sql.DB
	sessionStore Pinger
	server       *http.Server
	router       *gin.Engine
	logger       *slog.Logger
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(
	db *sql.DB,
	sessionStore Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:           db,
		sessionStore: sessionStore,
		logger:       logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and routes.
//
// Routes:
//
//	GET  /health
//	GET  /ready
//	POST /v1/auth/login    (per-IP rate limit)
//	POST /v1/auth/logout
//	POST /v1/auth/refresh  (authentication gate, per-subject rate limit)
//	GET  /v1/auth/me       (authentication gate, per-subject rate limit)
//
// ctx bounds the lifetime of the rate limiter cleanup goroutines.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	authHandler *authHTTP.AuthHandler,
	gate authUseCase.AuthenticationGate,
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

	v1 := router.Group("/v1/auth")
	{
		login := []gin.HandlerFunc{}
		if cfg.RateLimitLoginEnabled {
			login = append(login, authHTTP.LoginRateLimitMiddleware(
				ctx,
				cfg.RateLimitLoginRequestsPerSec,
				cfg.RateLimitLoginBurst,
				s.logger,
			))
		}
		login = append(login, authHandler.LoginHandler)
		v1.POST("/login", login...)

		v1.POST("/logout", authHandler.LogoutHandler)

		protected := v1.Group("")
		protected.Use(authHTTP.AuthenticationMiddleware(gate, s.logger))
		if cfg.RateLimitEnabled {
			protected.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
		}
		protected.POST("/refresh", authHandler.RefreshHandler)
		protected.GET("/me", authHandler.MeHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness only.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler probes the user database and the session store.
// A missing dependency counts as not ready.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := gin.H{
		"database":      "ok",
		"session_store": "ok",
	}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	}
	if s.sessionStore == nil || s.sessionStore.Ping(ctx) != nil {
		components["session_store"] = "error"
		ready = false
	}

	if !ready {
		s.logger.Warn("readiness check failed", slog.Any("components", components))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

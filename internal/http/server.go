package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditHTTP "github.com/hash066/biavault/internal/audit/http"
	snapshotHTTP "github.com/hash066/biavault/internal/snapshot/http"
	viewHTTP "github.com/hash066/biavault/internal/view/http"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host string
	Port int

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	CORSEnabled      bool
	CORSAllowOrigins string
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the API server and registers all routes.
//
// metricsMiddleware may be nil when metrics are disabled. readyCheck is
// invoked by the readiness endpoint and should verify downstream
// dependencies (typically a database ping).
func NewServer(
	cfg Config,
	logger *slog.Logger,
	snapshotHandler *snapshotHTTP.SnapshotHandler,
	auditHandler *auditHTTP.AuditHandler,
	viewHandler *viewHTTP.ViewHandler,
	metricsMiddleware gin.HandlerFunc,
	readyCheck func(ctx context.Context) error,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if metricsMiddleware != nil {
		router.Use(metricsMiddleware)
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	// Health and readiness endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		if readyCheck != nil {
			if err := readyCheck(c.Request.Context()); err != nil {
				logger.Warn("readiness check failed", slog.Any("error", err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Write endpoints get per-tenant rate limiting, reads stay unthrottled
	writeLimiter := func(c *gin.Context) { c.Next() }
	if cfg.RateLimitEnabled {
		writeLimiter = WriteRateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger)
	}

	tenant := router.Group("/v1/tenants/:tenantID")
	{
		tenant.POST("/snapshots", writeLimiter, snapshotHandler.SaveHandler)
		tenant.GET("/snapshots", snapshotHandler.ListHandler)
		tenant.GET("/snapshots/latest", snapshotHandler.GetLatestHandler)
		tenant.GET("/snapshots/:version", snapshotHandler.GetByVersionHandler)
		tenant.POST("/snapshots/:version/rollback", writeLimiter, snapshotHandler.RollbackHandler)
		tenant.POST("/snapshots/:version/approve", writeLimiter, snapshotHandler.ApproveHandler)
		tenant.POST("/snapshots/:version/reject", writeLimiter, snapshotHandler.RejectHandler)
		tenant.POST("/key-rotations", writeLimiter, snapshotHandler.RotateKeyHandler)
		tenant.GET("/audit-entries", auditHandler.ListByTenantHandler)
		tenant.GET("/views/:viewName", viewHandler.GetHandler)
	}

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
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

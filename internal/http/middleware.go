// Package http provides the HTTP server, routing, and middleware.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/hash066/biavault/internal/httputil"
)

// CustomLoggerMiddleware logs HTTP requests through the structured logger.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", requestid.Get(c)),
			slog.String("remote_addr", c.ClientIP()),
		)
	}
}

// rateLimiterStore holds per-tenant rate limiters with automatic cleanup.
type rateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// WriteRateLimitMiddleware enforces per-tenant rate limiting on write endpoints.
//
// Uses token bucket algorithm via golang.org/x/time/rate. Each tenant gets an
// independent rate limiter keyed by the tenantID path parameter, so a noisy
// tenant cannot starve the others.
//
// Configuration:
//   - rps: Requests per second allowed per tenant
//   - burst: Maximum burst capacity for temporary spikes
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func WriteRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &rateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	// Start cleanup goroutine for stale limiters (every 5 minutes)
	go store.cleanupStale(context.Background(), 5*time.Minute)

	return func(c *gin.Context) {
		tenantID := c.Param("tenantID")
		if tenantID == "" {
			// Route without a tenant parameter, nothing to key on
			c.Next()
			return
		}

		limiter := store.getLimiter(tenantID)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()

			logger.Debug("rate limit exceeded",
				slog.String("tenant_id", tenantID),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, httputil.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Too many write requests, slow down",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getLimiter returns the rate limiter for a tenant, creating it if needed.
func (s *rateLimiterStore) getLimiter(tenantID string) *rate.Limiter {
	now := time.Now()

	if value, ok := s.limiters.Load(tenantID); ok {
		entry := value.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &rateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: now,
	}

	actual, _ := s.limiters.LoadOrStore(tenantID, entry)
	return actual.(*rateLimiterEntry).limiter
}

// cleanupStale periodically removes limiters that have not been used recently.
func (s *rateLimiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-interval)
			s.limiters.Range(func(key, value any) bool {
				entry := value.(*rateLimiterEntry)
				entry.mu.Lock()
				stale := entry.lastAccess.Before(cutoff)
				entry.mu.Unlock()
				if stale {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

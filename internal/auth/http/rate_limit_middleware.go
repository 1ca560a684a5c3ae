package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/allisson/authgate/internal/httputil"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = time.Hour
)

// limiterStore holds one token bucket per key (client IP or subject).
type limiterStore struct {
	limiters sync.Map // map[string]*limiterEntry
	rps      float64
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		rps:   rps,
		burst: burst,
		now:   time.Now,
	}
}

// getLimiter retrieves or creates the limiter for key.
func (s *limiterStore) getLimiter(key string) *rate.Limiter {
	now := s.now()
	entry := &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: now,
	}
	if existing, loaded := s.limiters.LoadOrStore(key, entry); loaded {
		entry = existing.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
	}
	return entry.limiter
}

// sweep removes limiters idle since before threshold.
func (s *limiterStore) sweep(threshold time.Time) {
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		stale := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if stale {
			s.limiters.Delete(key)
		}
		return true
	})
}

// cleanupStale sweeps idle limiters until ctx is done.
func (s *limiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(s.now().Add(-limiterIdleTimeout))
		}
	}
}

// allow consumes one token for key, or writes a 429 with Retry-After and aborts.
func (s *limiterStore) allow(c *gin.Context, key, message string, logger *slog.Logger) bool {
	limiter := s.getLimiter(key)
	if limiter.Allow() {
		return true
	}

	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()
	if retryAfter < 1 {
		retryAfter = 1
	}

	logger.Debug("rate limit exceeded",
		slog.String("key", key),
		slog.String("path", c.FullPath()),
		slog.Int("retry_after", retryAfter))

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: message,
	})
	return false
}

// LoginRateLimitMiddleware enforces per-IP rate limiting on the unauthenticated login
// endpoint to slow down credential stuffing. c.ClientIP() honours X-Forwarded-For and
// X-Real-IP. The stale limiter cleanup stops when ctx is done.
func LoginRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	go store.cleanupStale(ctx, limiterCleanupInterval)

	return func(c *gin.Context) {
		if !store.allow(c, c.ClientIP(), "Too many login attempts from this IP. Please retry later.", logger) {
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware enforces per-subject rate limiting on authenticated endpoints.
// It must run after AuthenticationMiddleware.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	go store.cleanupStale(ctx, limiterCleanupInterval)

	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no authenticated principal in context")
			httputil.AbortUnauthorizedGin(c)
			return
		}

		if !store.allow(c, principal.Subject, "Too many requests. Please retry later.", logger) {
			return
		}
		c.Next()
	}
}

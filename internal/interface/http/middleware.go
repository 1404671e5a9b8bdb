package http

import (
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/familylog/internal/infra/config"
)

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

// rateLimitMiddleware throttles per caller. Mount it after authentication so the
// token subject is known.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newRateLimiter(cfg, time.Now)
	return func(c *gin.Context) {
		key := requestSubject(c)
		if limiter.allow(key) {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "caller", key, "path", c.Request.URL.Path)
		c.Header("Retry-After", "60")
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

type rateLimiter struct {
	buckets       map[string]*bucket
	mu            sync.Mutex
	ratePerMinute float64
	burst         float64
	ttl           time.Duration
	now           func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

func newRateLimiter(cfg config.RateLimitConfig, now func() time.Time) *rateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerMinute
	}
	return &rateLimiter{
		buckets:       make(map[string]*bucket),
		ratePerMinute: float64(cfg.RequestsPerMinute),
		burst:         float64(burst),
		ttl:           5 * time.Minute,
		now:           now,
	}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[key] = b
	} else {
		if elapsed := now.Sub(b.lastSeen).Minutes(); elapsed > 0 {
			b.tokens = math.Min(l.burst, b.tokens+elapsed*l.ratePerMinute)
		}
		b.lastSeen = now
	}
	l.evictLocked(now)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *rateLimiter) evictLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.buckets, key)
		}
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"caller", requestSubject(c),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"food-delivery-tracking/ratelimit"
)

// RateLimiter builds per-route limiting middleware over one shared Limiter.
type RateLimiter struct {
	limiter ratelimit.Limiter
	logger  *zap.Logger
	counter *prometheus.CounterVec
}

// NewRateLimiter returns a RateLimiter. A nil limiter disables limiting.
func NewRateLimiter(limiter ratelimit.Limiter, logger *zap.Logger, counter *prometheus.CounterVec) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{limiter: limiter, logger: logger, counter: counter}
}

// PerMinute allows limit requests per client IP and route each minute.
func (r *RateLimiter) PerMinute(limit int) gin.HandlerFunc {
	return r.Limit(limit, time.Minute)
}

// Limit allows limit requests per client IP and route within window.
// Limiter errors let the request through. A nil RateLimiter never limits.
func (r *RateLimiter) Limit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil || r.limiter == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		key := c.ClientIP() + ":" + route
		allowed, retryAfter, err := r.limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			r.logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			if r.counter != nil {
				r.counter.WithLabelValues(route).Inc()
			}
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Rate limit exceeded. Please try again later.",
				"retry_after": seconds,
			})
			return
		}
		c.Next()
	}
}

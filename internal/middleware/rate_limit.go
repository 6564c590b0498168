package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"tourbook/internal/utils"
	"tourbook/pkg/logger"
)

// WindowCounter counts hits in a fixed window. pkg/cache.RedisCache
// implements it.
type WindowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// RateLimiter allows Max requests per client IP per Window. Counts live in
// Redis so every instance shares them; when Redis is unavailable each
// process falls back to a token bucket with the same average rate.
type RateLimiter struct {
	counter WindowCounter
	config  RateLimitConfig
	logger  *logger.Logger

	mu      sync.Mutex
	local   map[string]*localEntry
	maxKeys int
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds a limiter. counter may be nil.
func NewRateLimiter(counter WindowCounter, config RateLimitConfig, log *logger.Logger) *RateLimiter {
	if config.Max <= 0 {
		config.Max = 100
	}
	if config.Window <= 0 {
		config.Window = time.Hour
	}
	return &RateLimiter{
		counter: counter,
		config:  config,
		logger:  log,
		local:   make(map[string]*localEntry),
		maxKeys: 10000,
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.config.Max))

		if l.counter != nil {
			count, ttl, err := l.counter.IncrementWindow(c.Request.Context(), "ratelimit:"+ip, l.config.Window)
			if err == nil {
				remaining := int64(l.config.Max) - count
				if remaining < 0 {
					remaining = 0
				}
				c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
				c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(ttl.Seconds()), 10))

				if count > int64(l.config.Max) {
					l.reject(c, ip, ttl)
					return
				}
				c.Next()
				return
			}
			l.logger.WithError(err).Warn("Rate limit store unavailable, using in-process limiter")
		}

		if !l.allowLocal(ip) {
			l.reject(c, ip, l.config.Window/time.Duration(l.config.Max))
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) reject(c *gin.Context, ip string, retryAfter time.Duration) {
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
	l.logger.LogSecurityEvent("rate_limit_exceeded", "medium", map[string]interface{}{
		"client_ip": ip,
		"path":      c.Request.URL.Path,
	})
	utils.ErrorResponse(c, http.StatusTooManyRequests, utils.ErrMsgTooManyRequests)
}

func (l *RateLimiter) allowLocal(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.local[ip]
	if !ok {
		if len(l.local) >= l.maxKeys {
			l.pruneLocked(now)
		}
		entry = &localEntry{
			limiter: rate.NewLimiter(rate.Every(l.config.Window/time.Duration(l.config.Max)), l.config.Max),
		}
		l.local[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// pruneLocked drops buckets idle for a full window; such a bucket is full
// again, so forgetting it changes nothing.
func (l *RateLimiter) pruneLocked(now time.Time) {
	for ip, e := range l.local {
		if now.Sub(e.lastSeen) > l.config.Window {
			delete(l.local, ip)
		}
	}
}

// middleware/rate_limiter.go

package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dev-mohitbeniwal/themis/db"
	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/util"
)

// Limiter decides whether one more request for key fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter shares a sliding window across replicas.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	per    time.Duration
}

func NewRedisLimiter(client redis.Cmdable, limit int, per time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, per: per}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return db.RateLimit(ctx, l.client, key, l.limit, per(l.per))
}

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	limiters sync.Map // key -> *rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewLocalLimiter allows limit requests per window, with bursts up to limit.
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		rate:  rate.Every(per(window) / time.Duration(max(limit, 1))),
		burst: max(limit, 1),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	limiter, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	return limiter.(*rate.Limiter).Allow(), nil
}

func per(window time.Duration) time.Duration {
	if window <= 0 {
		return time.Minute
	}
	return window
}

// RateLimiter rejects clients that exceed their budget with 429. A limiter
// failure lets the request through.
func RateLimiter(limiter Limiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Error("Rate limiting failed", zap.Error(err), zap.String("ip", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per(window).String())

		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", key),
				zap.Int("limit", limit),
				zap.Duration("per", window))
			c.Header("Retry-After", strconv.Itoa(int(per(window).Seconds())))
			util.RespondWithDomainError(c, themis_errors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

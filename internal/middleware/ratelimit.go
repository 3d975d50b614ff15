package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/logger"
	"github.com/learnage/portal/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimiter is a fixed-window per-IP limiter backed by Redis, so the limit
// holds across server instances.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a RateLimiter (e.g., 30 requests per minute).
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow counts one attempt for key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(c *gin.Context, key string) (bool, error) {
	ctx := c.Request.Context()

	n, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	// The first hit opens the window.
	if n == 1 {
		if err := rl.rdb.Expire(ctx, key, rl.window).Err(); err != nil {
			return true, err
		}
	}

	return n <= int64(rl.limit), nil
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
// Redis failures let requests through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := config.CacheKey.LoginAttemptsKey(c.ClientIP())

		ok, err := rl.Allow(c, key)
		if err != nil {
			l := logger.FromContext(c.Request.Context(), log.Logger)
			l.Warn().Err(err).Msg("Rate limiter unavailable")
		}
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}

		c.Next()
	}
}

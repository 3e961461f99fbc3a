package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pageza/recipebook/backend/internal/logger"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter limits requests per client IP. It counts in Redis when a
// client is configured and falls back to in-process token buckets otherwise.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, log *zap.Logger) *RateLimiter {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.Limit <= 0 {
		config.Limit = 1
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		logger: logger.OrNop(log),
		now:    time.Now,
		local:  make(map[string]*localBucket),
	}
}

// NewAIRateLimiter limits calls to the AI endpoint
func NewAIRateLimiter(redisClient *redis.Client, limit int, window time.Duration, log *zap.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:ai",
	}, log)
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()

		var (
			allowed   bool
			remaining int
			resetTime time.Time
			err       error
		)
		if rl.redis != nil {
			allowed, remaining, resetTime, err = rl.IsAllowed(c.Request.Context(), client)
		} else {
			allowed, remaining, resetTime = rl.allowLocal(client)
		}
		if err != nil {
			// a broken counter store never blocks traffic
			rl.logger.Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(resetTime.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"details":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request from client in the current fixed window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, client string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, client, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// allowLocal spends a token from the client's bucket. The bucket refills at
// Limit tokens per Window with a burst of Limit.
func (rl *RateLimiter) allowLocal(client string) (bool, int, time.Time) {
	now := rl.now()

	rl.mu.Lock()
	rl.sweepLocked(now)
	b, ok := rl.local[client]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(rl.config.Window/time.Duration(rl.config.Limit)), rl.config.Limit)}
		rl.local[client] = b
	}
	b.seen = now
	lim := b.limiter
	rl.mu.Unlock()

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	reset := now
	if tokens < 1 {
		reset = now.Add(time.Duration((1 - tokens) * float64(rl.config.Window) / float64(rl.config.Limit)))
	}
	return allowed, remaining, reset
}

// sweepLocked drops buckets idle for a full window, at most once per window.
// An idle bucket has refilled completely, so dropping it changes nothing.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.config.Window {
		return
	}
	rl.lastSweep = now
	for client, b := range rl.local {
		if now.Sub(b.seen) >= rl.config.Window {
			delete(rl.local, client)
		}
	}
}

func (rl *RateLimiter) localClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.local)
}

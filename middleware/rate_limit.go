package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/utils"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Redis     *redis.Client
	Requests  int           // Number of requests allowed
	Window    time.Duration // Time window
	KeyPrefix string        // Redis key prefix
	SkipPaths []string      // Paths to skip rate limiting
}

// RateLimiterMiddleware limits requests per user (or per IP when
// unauthenticated) with a sliding window in redis. When redis is down,
// a per-key in-process token bucket takes over so the API keeps serving.
type RateLimiterMiddleware struct {
	config RateLimitConfig

	mu      sync.Mutex
	buckets map[string]*utils.RateLimiter
}

// NewRateLimiterMiddleware creates a new rate limiter middleware
func NewRateLimiterMiddleware(config RateLimitConfig) *RateLimiterMiddleware {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit"
	}
	return &RateLimiterMiddleware{
		config:  config,
		buckets: make(map[string]*utils.RateLimiter),
	}
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiterMiddleware) Middleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if shouldSkipPath(c.Request.URL.Path, rl.config.SkipPaths) {
			c.Next()
			return
		}

		key := rl.requestKey(c)

		allowed, remaining, resetTime, err := rl.checkRedis(key)
		if err != nil {
			bucket := rl.fallbackBucket(key)
			allowed = bucket.Allow()
			remaining = bucket.Remaining()
			resetTime = time.Now().Add(rl.config.Window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())))
			utils.ErrorResponse(c, http.StatusTooManyRequests, models.ErrCodeRateLimit, "Rate limit exceeded", nil)
			c.Abort()
			return
		}

		c.Next()
	})
}

// checkRedis runs a sliding window log over a redis sorted set.
func (rl *RateLimiterMiddleware) checkRedis(key string) (allowed bool, remaining int, resetTime time.Time, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	now := time.Now()
	window := rl.config.Window

	pipe := rl.config.Redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now.Add(-window).UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, key, window)

	if _, err = pipe.Exec(ctx); err != nil {
		logrus.Debugf("Rate limit redis check failed, using in-process fallback: %v", err)
		return false, 0, time.Time{}, err
	}

	count := int(countCmd.Val())
	remaining = rl.config.Requests - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return count < rl.config.Requests, remaining, now.Add(window), nil
}

func (rl *RateLimiterMiddleware) fallbackBucket(key string) *utils.RateLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket := rl.buckets[key]
	if bucket == nil {
		bucket = utils.NewRateLimiter(rl.config.Requests, rl.config.Window)
		rl.buckets[key] = bucket
	}
	return bucket
}

// requestKey keys the limit by authenticated user when available,
// otherwise by client IP.
func (rl *RateLimiterMiddleware) requestKey(c *gin.Context) string {
	if userID := c.GetString("userID"); userID != "" {
		return fmt.Sprintf("%s:user:%s", rl.config.KeyPrefix, userID)
	}
	return fmt.Sprintf("%s:ip:%s", rl.config.KeyPrefix, c.ClientIP())
}

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimitResult is the outcome of one limiter check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error)
}

// slidingWindow keeps one sorted-set member per admitted request, scored by
// its arrival in milliseconds. It returns whether the request was admitted,
// the number of requests now in the window and the score of the oldest one.
var slidingWindow = redis.NewScript(`
local now, window, limit = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)

local admitted = 0
local count = redis.call('ZCARD', KEYS[1])
if count < limit then
	redis.call('ZADD', KEYS[1], now, ARGV[4])
	redis.call('PEXPIRE', KEYS[1], window)
	count = count + 1
	admitted = 1
end

local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
return {admitted, count, tonumber(oldest[2] or now)}
`)

// RedisRateLimiter keeps per-key request windows in Redis so the limit holds
// across server instances.
type RedisRateLimiter struct {
	client    redis.Scripter
	keyPrefix string
	now       func() time.Time
}

func NewRedisRateLimiter(client redis.Scripter, keyPrefix string) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, keyPrefix: keyPrefix, now: time.Now}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	now := l.now().UnixMilli()
	windowMs := window.Milliseconds()

	reply, err := slidingWindow.Run(ctx, l.client, []string{l.keyPrefix + key},
		now, windowMs, limit, uuid.NewString()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(reply) != 3 {
		return nil, fmt.Errorf("rate limit script: expected 3 values, got %d", len(reply))
	}

	admitted, count, oldest := reply[0] == 1, int(reply[1]), reply[2]
	return &RateLimitResult{
		Allowed:   admitted,
		Remaining: max(limit-count, 0),
		ResetAt:   time.UnixMilli(oldest + windowMs),
		Limit:     limit,
	}, nil
}

// RateLimitMiddleware limits requests per client IP and route. When the
// limiter itself fails the request is let through.
func RateLimitMiddleware(limiter RateLimiter, limit int, window time.Duration, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + ":" + c.ClientIP()

		result, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			log.WithError(err).WithField("key", key).Error("Rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			log.WithFields(logrus.Fields{
				"key":      key,
				"limit":    result.Limit,
				"reset_at": result.ResetAt,
			}).Warn("Rate limit exceeded")

			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Request was throttled."})
			return
		}

		c.Next()
	}
}

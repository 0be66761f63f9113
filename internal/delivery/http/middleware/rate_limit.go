package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-jobboard-client/internal/delivery/http/response"
	"go-jobboard-client/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: IP-based)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis
	KeyPrefix string
	// Whether to reject when Redis is unavailable
	FailClosed bool
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// LoginRateLimitConfig limits login attempts forwarded to the backend.
func LoginRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     5,
		Window:    1 * time.Minute,
		KeyPrefix: "jobboard:rl:login:",
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// memoryCounter is the fixed-window counter used when no Redis client is set.
type memoryCounter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
}

func (m *memoryCounter) incr(key string, window time.Duration, now time.Time) (int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &rateLimitEntry{resetAt: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	// drop expired windows while we hold the lock
	if len(m.entries) > 1024 {
		for k, v := range m.entries {
			if now.After(v.resetAt) {
				delete(m.entries, k)
			}
		}
	}
	return e.count, e.resetAt
}

// RateLimitMiddleware counts requests in Redis when client is non-nil, in
// memory otherwise.
func RateLimitMiddleware(config RateLimitConfig, client *goredis.Client) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	mem := &memoryCounter{entries: make(map[string]*rateLimitEntry)}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var count int
		var resetAt time.Time
		if client != nil {
			var err error
			count, resetAt, err = checkRateLimitRedis(c.Request.Context(), client, fullKey, config)
			if err != nil {
				logger.Log.Warn("rate limit store unavailable", "error", err)
				if config.FailClosed {
					response.Abort(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					return
				}
				count, resetAt = mem.incr(fullKey, config.Window, now)
			}
		} else {
			count, resetAt = mem.incr(fullKey, config.Window, now)
		}

		remaining := max(config.Limit-count, 0)
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := max(int(time.Until(resetAt).Seconds()), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			logger.Log.Warn("rate limit triggered", "ip", c.ClientIP(), "path", c.FullPath())
			response.Abort(c, http.StatusTooManyRequests, "Too many attempts. Please try again later.", nil)
			return
		}

		c.Next()
	}
}

// checkRateLimitRedis checks rate limit using Redis with atomic Lua script
func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())

	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

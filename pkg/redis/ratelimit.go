package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a sliding-window limiter shared by every process using
// the same Redis and namespace
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client    *Client
	namespace string
}

// retryInterval is the poll interval of Wait while the window is full
const retryInterval = 100 * time.Millisecond

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // Unique identifier (e.g., "quote", "treasury")
	Limit  int           // Maximum requests allowed
	Window time.Duration // Time window
}

// slidingWindowScript is loaded once and reused (EVALSHA)
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	-- Remove old entries outside the window
	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	-- Count current requests in window
	local count = redis.call('ZCARD', key)

	if count < limit then
		-- Add current request
		redis.call('ZADD', key, now, now)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	else
		return {0, 0}
	end
`)

// NewRateLimiter creates a limiter; a disabled client allows everything
func NewRateLimiter(client *Client, namespace string) *RateLimiter {
	return &RateLimiter{client: client, namespace: namespace}
}

// Allow checks if a request is allowed under the rate limit
// Returns (allowed, remaining, error)
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.client.Enabled() {
		return true, cfg.Limit, nil
	}

	now := time.Now().UnixMilli()
	windowMs := cfg.Window.Milliseconds()

	result, err := slidingWindowScript.Run(ctx, r.client.Redis(),
		[]string{key(r.namespace, "ratelimit", cfg.Key)},
		now, now-windowMs, cfg.Limit, windowMs,
	).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	if len(result) != 2 {
		return false, 0, fmt.Errorf("rate limit script: unexpected reply %v", result)
	}
	allowed, _ := result[0].(int64)
	remaining, _ := result[1].(int64)
	return allowed == 1, int(remaining), nil
}

// Wait blocks until a request is allowed or ctx is cancelled
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Bind fixes cfg so the limiter satisfies a single-method Wait(ctx) interface
func (r *RateLimiter) Bind(cfg RateLimitConfig) *BoundLimiter {
	return &BoundLimiter{limiter: r, cfg: cfg}
}

// BoundLimiter is a RateLimiter tied to one RateLimitConfig
type BoundLimiter struct {
	limiter *RateLimiter
	cfg     RateLimitConfig
}

// Wait blocks until the bound key has capacity
func (b *BoundLimiter) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx, b.cfg)
}

// QuoteRateLimit is the shared limit for the remote quote service.
// perSec <= 0 falls back to 5 requests per second.
func QuoteRateLimit(perSec int) RateLimitConfig {
	if perSec <= 0 {
		perSec = 5
	}
	return RateLimitConfig{
		Key:    "quote",
		Limit:  perSec,
		Window: time.Second,
	}
}

// TreasuryRateLimit throttles the HTML yield scraper (분당 10회, 보수적)
var TreasuryRateLimit = RateLimitConfig{
	Key:    "treasury",
	Limit:  10,
	Window: time.Minute,
}

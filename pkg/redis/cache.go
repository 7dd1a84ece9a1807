package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Cache stores JSON values under "<namespace>:cache:<key>".
// Reads never fail on Redis errors: an unreachable server is a miss.
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client    *Client
	namespace string
}

// NewCache creates a cache helper; a disabled client makes every call a no-op
func NewCache(client *Client, namespace string) *Cache {
	return &Cache{client: client, namespace: namespace}
}

func (c *Cache) fullKey(k string) string {
	return key(c.namespace, "cache", k)
}

// Get decodes a cached value into dest and reports whether it was found
func (c *Cache) Get(ctx context.Context, k string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(k)).Bytes()
	if err != nil {
		// redis.Nil 포함 모든 읽기 오류는 miss
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal %s: %w", k, err)
	}
	return true, nil
}

// Set stores value as JSON with ttl
func (c *Cache) Set(ctx context.Context, k string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", k, err)
	}
	return c.client.Redis().Set(ctx, c.fullKey(k), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, k string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.fullKey(k)).Err()
}

// GetOrSet fills dest from the cache, or from fn on a miss.
// A failed write after fn succeeds is ignored.
func (c *Cache) GetOrSet(ctx context.Context, k string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	found, err := c.Get(ctx, k, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	value, err := fn()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", k, err)
	}
	if c.client.Enabled() {
		_ = c.client.Redis().Set(ctx, c.fullKey(k), data, ttl).Err()
	}
	return json.Unmarshal(data, dest)
}

// TTLs per cached value
const (
	TTLShort  = 1 * time.Minute  // 분석 결과
	TTLMedium = 10 * time.Minute // 종목 시세 + 재무
	TTLLong   = 1 * time.Hour    // 국채 금리
)

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// SecurityKey is the cache key of a quote payload
func SecurityKey(ticker string) string {
	return "security:" + normalizeTicker(ticker)
}

// TreasuryRateKey is the cache key of the 10-year treasury yield
func TreasuryRateKey() string {
	return "treasury:10y"
}

// AnalysisKey is the cache key of a per-security analysis under a protocol hash.
// Only the first 12 hex chars of the hash are used.
func AnalysisKey(ticker, protocolHash string) string {
	if len(protocolHash) > 12 {
		protocolHash = protocolHash[:12]
	}
	return "analysis:" + protocolHash + ":" + normalizeTicker(ticker)
}

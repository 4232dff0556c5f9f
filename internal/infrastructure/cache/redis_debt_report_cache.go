package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/redis/go-redis/v9"
)

// DefaultDebtReportKey is the Redis key holding the serialized report
const DefaultDebtReportKey = "ledger:debt_report"

// RedisDebtReportCache stores the debt report in Redis so every instance reads the same rebuild
type RedisDebtReportCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisDebtReportCache creates a Redis-backed cache and verifies the connection
func NewRedisDebtReportCache(ctx context.Context, client *redis.Client, key string, ttl time.Duration) (*RedisDebtReportCache, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisDebtReportCacheWithClient(client, key, ttl), nil
}

// NewRedisDebtReportCacheWithClient wraps an existing client without a connectivity check
func NewRedisDebtReportCacheWithClient(client *redis.Client, key string, ttl time.Duration) *RedisDebtReportCache {
	if key == "" {
		key = DefaultDebtReportKey
	}
	if ttl <= 0 {
		ttl = DefaultDebtReportTTL
	}
	return &RedisDebtReportCache{client: client, key: key, ttl: ttl}
}

// Get returns the cached report, or nil on a miss
func (c *RedisDebtReportCache) Get(ctx context.Context) (*appledger.DebtReport, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read debt report: %w", err)
	}
	var report appledger.DebtReport
	if err := json.Unmarshal(data, &report); err != nil {
		// A payload from an older layout is treated as a miss and overwritten on the next rebuild
		return nil, nil
	}
	return &report, nil
}

// Set stores the report with the configured TTL
func (c *RedisDebtReportCache) Set(ctx context.Context, report *appledger.DebtReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode debt report: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store debt report: %w", err)
	}
	return nil
}

// Invalidate removes the cached report
func (c *RedisDebtReportCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate debt report: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (c *RedisDebtReportCache) Close() error {
	return c.client.Close()
}

var _ appledger.DebtReportCache = (*RedisDebtReportCache)(nil)

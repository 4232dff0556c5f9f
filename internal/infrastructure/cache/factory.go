package cache

import (
	"context"
	"fmt"

	appledger "github.com/Libaaxow/gaf-flow-hub-sub002/internal/application/ledger"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DebtReportCacheFactory picks the debt report cache implementation from configuration
type DebtReportCacheFactory struct {
	redisConfig           config.RedisConfig
	ledgerConfig          config.LedgerConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*DebtReportCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *DebtReportCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to the in-memory cache.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *DebtReportCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewDebtReportCacheFactory creates a new factory
func NewDebtReportCacheFactory(redisCfg config.RedisConfig, ledgerCfg config.LedgerConfig, opts ...FactoryOption) *DebtReportCacheFactory {
	f := &DebtReportCacheFactory{
		redisConfig:           redisCfg,
		ledgerConfig:          ledgerCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis cache when Redis is enabled and reachable, the in-memory cache otherwise
func (f *DebtReportCacheFactory) Create(ctx context.Context) (appledger.DebtReportCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Using in-memory debt report cache")
		return NewInMemoryDebtReportCache(f.ledgerConfig.DebtCacheTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	c, err := NewRedisDebtReportCache(ctx, client, DefaultDebtReportKey, f.ledgerConfig.DebtCacheTTL)
	if err == nil {
		f.logger.Info("Using Redis debt report cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}
	_ = client.Close()

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for debt report cache but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory debt report cache. "+
		"Instances will rebuild reports independently.",
		zap.Error(err),
	)
	return NewInMemoryDebtReportCache(f.ledgerConfig.DebtCacheTTL), nil
}

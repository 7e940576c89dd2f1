package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/config"
	"github.com/wildcare/compliance-engine/internal/readiness"
)

// ErrMiss is returned when a report is not cached
var ErrMiss = errors.New("cache miss")

// ReportCache caches readiness reports per organisation
type ReportCache interface {
	GetReport(ctx context.Context, orgID string) (*readiness.Report, error)
	SetReport(ctx context.Context, orgID string, report *readiness.Report) error
	Invalidate(ctx context.Context, orgID string) error
}

// RedisCache is a ReportCache backed by Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient builds a Redis client from configuration
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
		PoolSize: cfg.Redis.PoolSize,
	})
}

// NewRedisCache creates a report cache with the given entry TTL
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func reportKey(orgID string) string {
	return fmt.Sprintf("readiness:%s", orgID)
}

// GetReport retrieves a cached report
func (c *RedisCache) GetReport(ctx context.Context, orgID string) (*readiness.Report, error) {
	data, err := c.client.Get(ctx, reportKey(orgID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report readiness.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, nil
}

// SetReport stores a report until the TTL elapses
func (c *RedisCache) SetReport(ctx context.Context, orgID string, report *readiness.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, reportKey(orgID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// Invalidate drops an organisation's cached report
func (c *RedisCache) Invalidate(ctx context.Context, orgID string) error {
	if err := c.client.Del(ctx, reportKey(orgID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate report cache: %w", err)
	}
	return nil
}

// Ping checks connectivity for health reporting
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Noop is a ReportCache that never stores anything
type Noop struct{}

func (Noop) GetReport(context.Context, string) (*readiness.Report, error) { return nil, ErrMiss }

func (Noop) SetReport(context.Context, string, *readiness.Report) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }

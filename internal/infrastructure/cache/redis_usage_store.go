// Package cache implements the durable per-tenant usage counters on Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tenantgrid/backend/internal/domain/billing"
)

// RedisUsageStore implements billing.UsageStore. INCRBY is atomic on the
// server, so concurrent deliveries across processing lanes never lose
// updates - there is no read-modify-write anywhere in this path.
type RedisUsageStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisUsageStore creates a usage store with its own Redis client.
func NewRedisUsageStore(cfg RedisConfig) (*RedisUsageStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisUsageStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisUsageStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisUsageStoreWithClient(client *redis.Client, keyPrefix string) *RedisUsageStore {
	if keyPrefix == "" {
		keyPrefix = "usage:"
	}
	return &RedisUsageStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// AddUsage implements billing.UsageStore. The counter is created implicitly
// at 0 on the first increment.
func (s *RedisUsageStore) AddUsage(ctx context.Context, tenantID string, delta int64) (int64, error) {
	total, err := s.client.IncrBy(ctx, s.key(tenantID), delta).Result()
	if err != nil {
		return 0, fmt.Errorf("usage increment failed for tenant: %w", err)
	}
	return total, nil
}

// GetUsage implements billing.UsageStore. A missing counter reads as 0.
func (s *RedisUsageStore) GetUsage(ctx context.Context, tenantID string) (int64, error) {
	total, err := s.client.Get(ctx, s.key(tenantID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("usage read failed for tenant: %w", err)
	}
	return total, nil
}

// Close closes the underlying Redis client.
func (s *RedisUsageStore) Close() error {
	return s.client.Close()
}

func (s *RedisUsageStore) key(tenantID string) string {
	return s.keyPrefix + tenantID
}

// Ensure RedisUsageStore implements billing.UsageStore
var _ billing.UsageStore = (*RedisUsageStore)(nil)

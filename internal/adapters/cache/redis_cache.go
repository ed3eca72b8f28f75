package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

const redisKeyPrefix = "phishtrust:verdict:"

// RedisConfig holds the connection settings for the Redis cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache is a Redis implementation of the CacheRepository interface.
// Expiry is delegated to Redis TTLs, so Cleanup is a no-op.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(cfg RedisConfig, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return &RedisCache{client: client, logger: logger}, nil
}

// Get retrieves a cached entry for a text hash
func (c *RedisCache) Get(ctx context.Context, textHash string) (*core.CacheEntry, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+textHash).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	var entry core.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Error("Failed to decode cache entry", zap.Error(err))
		return nil, nil
	}
	return &entry, nil
}

// Set stores a cache entry
func (c *RedisCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, redisKeyPrefix+entry.TextHash, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *RedisCache) Delete(ctx context.Context, textHash string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+textHash).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires entries by TTL.
func (c *RedisCache) Cleanup(context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
	}
}

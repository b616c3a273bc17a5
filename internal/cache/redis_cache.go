package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"photomap-service/internal/storage"
)

// RedisCache shares cached values between service replicas.
type RedisCache struct {
	client *storage.RedisClient
	prefix string

	// Statistics
	hits   atomic.Int64
	misses atomic.Int64
}

func NewRedisCache(client *storage.RedisClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (rc *RedisCache) Name() string {
	return "REDIS"
}

func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, found, err := rc.client.GetBytes(ctx, rc.prefix+key)
	if err != nil {
		rc.misses.Add(1)
		return nil, false, fmt.Errorf("redis error: %w", err)
	}
	if !found {
		rc.misses.Add(1)
		return nil, false, nil
	}
	rc.hits.Add(1)
	return data, true, nil
}

func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := rc.client.SetBytes(ctx, rc.prefix+key, value, ttl); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = rc.prefix + key
	}
	if err := rc.client.Delete(ctx, prefixed...); err != nil {
		return fmt.Errorf("failed to delete from Redis: %w", err)
	}
	return nil
}

func (rc *RedisCache) GetStats() LayerStats {
	hits := rc.hits.Load()
	misses := rc.misses.Load()
	return LayerStats{
		Name:    "Redis",
		Entries: -1,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate(hits, misses),
	}
}

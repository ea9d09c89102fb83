package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisProgressCache struct {
	rdb *redis.Client
}

func NewRedisProgressCache(rdb *redis.Client) *RedisProgressCache {
	return &RedisProgressCache{rdb: rdb}
}

func progressKey(campaignID string) string {
	return fmt.Sprintf("progress:%s", campaignID)
}

// GetSnapshot returns nil (no error) on a cache miss.
func (c *RedisProgressCache) GetSnapshot(ctx context.Context, campaignID string) ([]byte, error) {
	raw, err := c.rdb.Get(ctx, progressKey(campaignID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return raw, nil
}

func (c *RedisProgressCache) StoreSnapshot(ctx context.Context, campaignID string, snapshot []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, progressKey(campaignID), snapshot, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisProgressCache) Invalidate(ctx context.Context, campaignID string) error {
	if err := c.rdb.Del(ctx, progressKey(campaignID)).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

var _ ProgressCache = (*RedisProgressCache)(nil)

package commentary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "capmatch:commentary:"

// DefaultTTL bounds how long commentary outlives the data it was generated
// from. The key structure already invalidates on config or rule changes;
// the TTL only reclaims space.
const DefaultTTL = 24 * time.Hour

// RedisCache is the shared commentary store for server deployments.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. A non-positive ttl uses
// DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key Key) (Entry, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("commentary get: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("commentary decode: %w", err)
	}
	return entry, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key Key, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("commentary encode: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key.String(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("commentary set: %w", err)
	}
	return nil
}

// Clear removes all commentary entries under the prefix, scanning in
// batches so large caches do not block Redis.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("commentary clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("commentary scan: %w", err)
	}
	return nil
}

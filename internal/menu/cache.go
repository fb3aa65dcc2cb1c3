package menu

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const menuCacheKey = "menu:full"

// Cache wraps Redis helpers for the cached menu payload.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get unmarshals the cached menu into dst. It reports whether the key existed.
func (c *Cache) Get(ctx context.Context, dst any) (bool, error) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return false, nil
	}
	data, err := c.client.Get(ctx, menuCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores the menu payload with the configured TTL.
func (c *Cache) Set(ctx context.Context, v any) error {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, menuCacheKey, data, c.ttl).Err()
}

// Invalidate drops the cached menu after a mutation.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, menuCacheKey).Err()
}

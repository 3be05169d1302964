// Package cache provides analytics.IntervalCache implementations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
)

// DefaultKeyPrefix namespaces the interval series keys.
const DefaultKeyPrefix = "menuinzicht:intervals:"

// RedisIntervalCache stores each date as one hash with a field per slot grid,
// so invalidating a date is a single DEL.
type RedisIntervalCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisIntervalCache creates a new Redis backed interval cache.
// A zero ttl keeps entries until the date is invalidated.
func NewRedisIntervalCache(client *redis.Client, ttl time.Duration) *RedisIntervalCache {
	return &RedisIntervalCache{
		client: client,
		prefix: DefaultKeyPrefix,
		ttl:    ttl,
	}
}

func (c *RedisIntervalCache) key(date string) string {
	return c.prefix + date
}

// Get returns the cached series of date on grid.
func (c *RedisIntervalCache) Get(ctx context.Context, date string, grid analytics.SlotGrid) ([]analytics.SlotAggregate, bool, error) {
	raw, err := c.client.HGet(ctx, c.key(date), grid.Key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read interval cache: %w", err)
	}

	var slots []analytics.SlotAggregate
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached intervals of %s: %w", date, err)
	}
	return slots, true, nil
}

// Set stores the series of date on grid and refreshes the TTL of the date.
func (c *RedisIntervalCache) Set(ctx context.Context, date string, grid analytics.SlotGrid, slots []analytics.SlotAggregate) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to encode intervals of %s: %w", date, err)
	}

	key := c.key(date)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, grid.Key(), raw)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write interval cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached series of date.
func (c *RedisIntervalCache) Invalidate(ctx context.Context, date string) error {
	if err := c.client.Del(ctx, c.key(date)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate interval cache: %w", err)
	}
	return nil
}

// Ensure RedisIntervalCache implements analytics.IntervalCache.
var _ analytics.IntervalCache = (*RedisIntervalCache)(nil)

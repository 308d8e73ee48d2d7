package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"campsite/pkg/daterange"
)

// occupiedDatesKey is the single Redis set holding every occupied day, stored
// in the 2006-01-02 wire format.
const occupiedDatesKey = "campsite:occupied-dates"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) IsInitialized(ctx context.Context) (bool, error) {
	n, err := c.client.Exists(ctx, occupiedDatesKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache key: %w", err)
	}
	return n > 0, nil
}

func (c *RedisCache) Initialize(ctx context.Context, dates []time.Time) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, occupiedDatesKey)
	if len(dates) > 0 {
		pipe.SAdd(ctx, occupiedDatesKey, members(dates)...)
		pipe.Expire(ctx, occupiedDatesKey, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to initialize availability cache: %w", err)
	}
	return nil
}

func (c *RedisCache) AddDates(ctx context.Context, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, occupiedDatesKey, members(dates)...)
	// The add may create the key (empty initialization leaves no key behind);
	// ExpireNX guarantees a TTL without shortening one set by Initialize.
	pipe.ExpireNX(ctx, occupiedDatesKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add occupied dates: %w", err)
	}
	return nil
}

func (c *RedisCache) RemoveDates(ctx context.Context, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}
	if err := c.client.SRem(ctx, occupiedDatesKey, members(dates)...).Err(); err != nil {
		return fmt.Errorf("failed to remove occupied dates: %w", err)
	}
	return nil
}

func (c *RedisCache) OccupiedDates(ctx context.Context) (map[time.Time]struct{}, error) {
	values, err := c.client.SMembers(ctx, occupiedDatesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list occupied dates: %w", err)
	}

	occupied := make(map[time.Time]struct{}, len(values))
	for _, v := range values {
		day, err := daterange.ParseDay(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt cache member %q: %w", v, err)
		}
		occupied[day] = struct{}{}
	}
	return occupied, nil
}

func members(dates []time.Time) []any {
	out := make([]any, len(dates))
	for i, d := range dates {
		out[i] = daterange.FormatDay(d)
	}
	return out
}

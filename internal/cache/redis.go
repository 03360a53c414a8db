package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const currenciesKey = "payments:currencies"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context) ([]string, error) {
	data, err := r.client.Get(ctx, currenciesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var currencies []string
	if err := json.Unmarshal(data, &currencies); err != nil {
		return nil, fmt.Errorf("unmarshal currencies failed: %w", err)
	}
	return currencies, nil
}

func (r *RedisCache) Set(ctx context.Context, currencies []string) error {
	data, err := json.Marshal(currencies)
	if err != nil {
		return fmt.Errorf("marshal currencies failed: %w", err)
	}
	if err := r.client.Set(ctx, currenciesKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

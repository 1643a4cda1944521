package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lendshare/internal/config"
	"lendshare/internal/models"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a Redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSearchCache(client *redis.Client, ttl time.Duration) *RedisSearchCache {
	return &RedisSearchCache{client: client, ttl: ttl}
}

func searchKey(query string) string {
	return "item_search:" + query
}

// Get returns nil items without error on a miss.
func (c *RedisSearchCache) Get(ctx context.Context, query string) ([]*models.Item, error) {
	if c.client == nil {
		return nil, errors.New("redis client is nil")
	}

	val, err := c.client.Get(ctx, searchKey(query)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search results from redis: %w", err)
	}

	var items []*models.Item
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search results: %w", err)
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

func (c *RedisSearchCache) Set(ctx context.Context, query string, items []*models.Item) error {
	if c.client == nil {
		return errors.New("redis client is nil")
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}

	if err := c.client.Set(ctx, searchKey(query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set search results in redis: %w", err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devtrail/idea-engine/internal/models"
)

// Redis is a cache backed by a Redis server, for deployments where multiple
// instances should share the memoization layer
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed cache and verifies connectivity
func NewRedis(ctx context.Context, address, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Redis{client: client, ttl: ttl}, nil
}

// Get implements Store
func (r *Redis) Get(ctx context.Context, key string) (*models.AnalyzeCompanyResponse, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var value models.AnalyzeCompanyResponse
	if err := json.Unmarshal(data, &value); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		return nil, false, nil
	}

	return &value, true, nil
}

// Set implements Store
func (r *Redis) Set(ctx context.Context, key string, value *models.AnalyzeCompanyResponse) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close implements Store
func (r *Redis) Close() error {
	return r.client.Close()
}

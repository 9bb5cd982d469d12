package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
)

// RedisKVRepository stores grades ledger namespaces as plain Redis strings.
type RedisKVRepository struct {
	client *redis.Client
}

// NewRedisKVRepository constructs the repository.
func NewRedisKVRepository(client *redis.Client) *RedisKVRepository {
	return &RedisKVRepository{client: client}
}

// Get returns the raw value of key.
func (r *RedisKVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		return nil, kvstore.ErrUnavailable
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kvstore.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set stores value under key without expiry.
func (r *RedisKVRepository) Set(ctx context.Context, key string, value []byte) error {
	if r.client == nil {
		return kvstore.ErrUnavailable
	}
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

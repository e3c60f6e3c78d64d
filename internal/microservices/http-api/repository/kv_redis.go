package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKVStore stores each blob as a plain string value under prefix+key.
type RedisKVStore struct {
	client *redis.Client
	prefix string
}

func NewRedisKVStore(client *redis.Client, prefix string) *RedisKVStore {
	return &RedisKVStore{client: client, prefix: prefix}
}

func (r *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

func (r *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	// no expiry: the blobs live as long as the site does
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisKVStore) Close() error {
	return r.client.Close()
}

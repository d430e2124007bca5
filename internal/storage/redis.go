package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/clinikore/offlinesync/internal/models"
)

// RedisStore persists the queue as a single Redis string key. Useful when
// several kiosk terminals in one branch share a local Redis instance and
// the pending queue should survive individual terminal restarts.
type RedisStore struct {
	client *redis.Client
	codec  Codec
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, codec Codec) (*RedisStore, error) {
	if codec == nil {
		codec = PlainCodec()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client, codec: codec}, nil
}

// Load reads the persisted queue snapshot.
func (s *RedisStore) Load(ctx context.Context) ([]models.QueuedRequest, error) {
	value, err := s.client.Get(ctx, models.StorageKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	plaintext, err := s.codec.Decode([]byte(value))
	if err != nil {
		return nil, err
	}
	return decode(plaintext)
}

// Save replaces the persisted queue snapshot.
func (s *RedisStore) Save(ctx context.Context, requests []models.QueuedRequest) error {
	plaintext, err := encode(requests)
	if err != nil {
		return err
	}

	stored, err := s.codec.Encode(plaintext)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, models.StorageKey, string(stored), 0).Err(); err != nil {
		return fmt.Errorf("failed to save queue: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage implements fiber.Storage on a go-redis client.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStorage returns a storage keeping keys below prefix.
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

// Get returns the value of key, nil if it does not exist.
func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	val, err := s.client.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	return val, err //nolint:wrapcheck
}

// Set stores val under key. A zero exp keeps it until deleted.
func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	return s.client.Set(context.Background(), s.prefix+key, val, exp).Err() //nolint:wrapcheck
}

// Delete removes key.
func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}

	return s.client.Del(context.Background(), s.prefix+key).Err() //nolint:wrapcheck
}

// Reset removes every key below the prefix.
func (s *RedisStorage) Reset() error {
	ctx := context.Background()

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator() //nolint:mnd
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return iter.Err() //nolint:wrapcheck
}

// Close closes the client.
func (s *RedisStorage) Close() error {
	return s.client.Close() //nolint:wrapcheck
}

package session

import (
	"context"
	"errors"

	"github.com/p-n-ai/statsmd/internal/platform/cache"
)

// RedisStorage stores snapshots under statsmd:<key> in Redis.
type RedisStorage struct {
	cache *cache.Cache
}

func NewRedisStorage(c *cache.Cache) *RedisStorage {
	return &RedisStorage{cache: c}
}

func (s *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	data, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return s.cache.Set(ctx, key, data, 0)
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.cache.HealthCheck(ctx)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (s *RedisStorage) Load(c context.Context, key string) ([]byte, error) {
	blob, err := s.client.Get(c, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed loading cart blob key=%s with error=%w", key, err)
	}
	return blob, nil
}

func (s *RedisStorage) Save(c context.Context, key string, blob []byte) error {
	err := s.client.Set(c, key, blob, s.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed saving cart blob key=%s with error=%w", key, err)
	}
	return nil
}

func (s *RedisStorage) Delete(c context.Context, key string) error {
	err := s.client.Del(c, key).Err()
	if err != nil {
		return fmt.Errorf("failed deleting cart blob key=%s with error=%w", key, err)
	}
	return nil
}

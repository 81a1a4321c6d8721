package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the strategy collection under a single Redis key.
type RedisStore struct {
	Client *redis.Client
	key    string
}

func NewRedisStore(opt *redis.Options, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{Client: redis.NewClient(opt), key: key}
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	b, err := s.Client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	return s.Client.Set(ctx, s.key, data, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}

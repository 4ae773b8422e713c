package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"catalyst-trader/internal/service"
)

// RedisStore 基于 Redis 的去重存储，键带 TTL 自动过期
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 连接 Redis 并 PING 一次
func NewRedisStore(ctx context.Context, cfg service.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

func (s *RedisStore) Seen(ctx context.Context, hash string) (bool, error) {
	n, err := s.client.Exists(ctx, KeyPrefix+hash).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen key: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Save(ctx context.Context, hash string) error {
	if err := s.client.Set(ctx, KeyPrefix+hash, time.Now().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save seen key: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

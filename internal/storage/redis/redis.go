package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diem/reference-wallet-sub000/internal/config"
	"github.com/diem/reference-wallet-sub000/pkg/e"
)

type Redis struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func NewRedis(cfg *config.RedisConfig, logger *slog.Logger) (*Redis, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
		DB:       cfg.DBRedis,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("storage.redis.NewRedis: ping failed: %w", err)
	}

	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return e.Wrap("storage.redis.Set: marshal", err)
	}
	if err := r.client.Set(ctx, key, data, exp).Err(); err != nil {
		return e.Wrap("storage.redis.Set", err)
	}
	return nil
}

// Get unmarshals the cached value into value. e.ErrCacheMiss on absent keys.
func (r *Redis) Get(ctx context.Context, key string, value interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return e.ErrCacheMiss
	}
	if err != nil {
		return e.Wrap("storage.redis.Get", err)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return e.Wrap("storage.redis.Get: unmarshal", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return e.Wrap("storage.redis.Delete", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

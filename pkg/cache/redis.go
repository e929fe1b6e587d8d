package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisCache struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedis connects to addr and pings it before returning.
func NewRedis(addr, password string, db int, log *zap.Logger) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}

	log.Info("Redis cache connected", zap.String("addr", addr), zap.Int("db", db))
	return NewRedisFromClient(client, log), nil
}

func NewRedisFromClient(client *redis.Client, log *zap.Logger) Cache {
	return &redisCache{
		client: client,
		log:    log.With(zap.String("cache", "redis")),
	}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Version(ctx context.Context, key string) (int64, error) {
	v, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version %s: %w", key, err)
	}
	return v, nil
}

func (c *redisCache) Bump(ctx context.Context, key string) error {
	v, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis incr %s: %w", key, err)
	}
	c.log.Debug("Cache generation bumped", zap.String("key", key), zap.Int64("version", v))
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

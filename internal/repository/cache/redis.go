package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tile:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL of zero keeps tiles forever.
	TTL time.Duration
}

func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

var (
	_ TileCache   = (*RedisCache)(nil)
	_ RemoteStore = (*RedisCache)(nil)
)

func (c *RedisCache) Remote() bool { return true }

func (c *RedisCache) Get(ctx context.Context, key string) (TileCacheValue, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RedisOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		metrics.RedisErrors.WithLabelValues("get").Inc()
		return nil, false, fmt.Errorf("redis get error: %w", err)
	}

	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, v TileCacheValue) error {
	start := time.Now()
	defer func() {
		metrics.RedisOperationDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	}()

	if err := c.client.Set(ctx, redisKeyPrefix+key, []byte(v), c.ttl).Err(); err != nil {
		metrics.RedisErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jgivc/maskedlink/internal/common"
	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewRedisCache(cl *redis.Client, log *slog.Logger) *redisCache {
	return &redisCache{
		cl:  cl,
		log: log.With(slog.String("item", "RedisCache")),
	}
}

// NewRedisClient parses url and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cannot parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()

		return nil, fmt.Errorf("cannot ping redis: %w", err)
	}

	return rdb, nil
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.cl.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrCacheMiss
		}

		return nil, fmt.Errorf("cannot get key %s: %w", key, err)
	}

	return data, nil
}

func (r *redisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if _, err := r.cl.Set(ctx, key, data, ttl).Result(); err != nil {
		return fmt.Errorf("cannot set key %s: %w", key, err)
	}

	return nil
}

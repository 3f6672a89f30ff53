package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/jgivc/maskedlink/internal/common"
	gocache "github.com/patrickmn/go-cache"
)

const (
	cleanupInterval = time.Minute
)

type memoryCache struct {
	c   *gocache.Cache
	log *slog.Logger
}

func NewMemoryCache(ttl time.Duration, log *slog.Logger) *memoryCache {
	return &memoryCache{
		c:   gocache.New(ttl, cleanupInterval),
		log: log.With(slog.String("item", "MemoryCache")),
	}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, found := m.c.Get(key)
	if !found {
		return nil, common.ErrCacheMiss
	}

	data, ok := v.([]byte)
	if !ok {
		m.c.Delete(key)

		return nil, common.ErrCacheMiss
	}

	return data, nil
}

func (m *memoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.c.Set(key, data, ttl)

	return nil
}

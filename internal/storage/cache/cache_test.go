package cache

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jgivc/maskedlink/internal/common"
	"github.com/stretchr/testify/require"
)

// Set MASKEDLINK_TEST_REDIS_URL to run the redis cases against a live server.
const envTestRedisURL = "MASKEDLINK_TEST_REDIS_URL"

type byteCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testCache(t *testing.T, c byteCache, key string) {
	ctx := context.Background()

	_, err := c.Get(ctx, key)
	require.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, key, []byte(`[{"maskedLink":"x"}]`), time.Minute))

	data, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, `[{"maskedLink":"x"}]`, string(data))
}

func TestMemoryCache(t *testing.T) {
	testCache(t, NewMemoryCache(time.Minute, discardLog()), "mf:test")
}

func TestMemoryCacheExpiration(t *testing.T) {
	c := NewMemoryCache(time.Minute, discardLog())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "mf:short", []byte("[]"), 10*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	_, err := c.Get(ctx, "mf:short")
	require.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv(envTestRedisURL)
	if url == "" {
		t.Skipf("%s is not set", envTestRedisURL)
	}

	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	key := "mf:test:" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { rdb.Del(ctx, key) })

	testCache(t, NewRedisCache(rdb, discardLog()), key)
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	require.Error(t, err)
}

package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jgivc/maskedlink/internal/adapter/mfadapter"
	"github.com/jgivc/maskedlink/internal/common"
	"github.com/jgivc/maskedlink/internal/entity"
	"github.com/jgivc/maskedlink/internal/util"
)

const (
	KeyManifest  = "mf" // STRING. Raw manifest document keyed by the sha1 of its location.
	KeySeparator = ":"
)

type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

type manifestRepository struct {
	src   Source
	cache Cache
	ttl   time.Duration
	key   string
	log   *slog.Logger
}

// NewManifestRepository returns a repository that fetches the manifest from
// src on every call. When cache is not nil the raw document is kept for ttl.
func NewManifestRepository(src Source, cache Cache, ttl time.Duration, log *slog.Logger) *manifestRepository {
	location := src.Location()

	return &manifestRepository{
		src:   src,
		cache: cache,
		ttl:   ttl,
		key:   getKey(KeyManifest, util.GetIDFromString(&location)),
		log:   log.With(slog.String("item", "ManifestRepository"), slog.String("location", location)),
	}
}

func (r *manifestRepository) GetManifest(ctx context.Context) ([]*entity.ManifestEntry, error) {
	if entries, ok := r.fromCache(ctx); ok {
		return entries, nil
	}

	data, err := r.src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
	}

	entries, err := mfadapter.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
	}

	r.log.Debug("Manifest loaded", slog.Int("entries", len(entries)))

	if r.cache != nil {
		if err := r.cache.Set(ctx, r.key, data, r.ttl); err != nil {
			r.log.Error("Cannot cache manifest", slog.String("key", r.key), slog.Any("error", err))
		}
	}

	return entries, nil
}

func (r *manifestRepository) fromCache(ctx context.Context) ([]*entity.ManifestEntry, bool) {
	if r.cache == nil {
		return nil, false
	}

	data, err := r.cache.Get(ctx, r.key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			r.log.Error("Cannot read cached manifest", slog.String("key", r.key), slog.Any("error", err))
		}

		return nil, false
	}

	entries, err := mfadapter.Decode(data)
	if err != nil {
		r.log.Error("Cannot decode cached manifest", slog.String("key", r.key), slog.Any("error", err))

		return nil, false
	}

	r.log.Debug("Manifest served from cache", slog.Int("entries", len(entries)))

	return entries, true
}

func getKey(keys ...string) string {
	return strings.Join(keys, KeySeparator)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/jgivc/maskedlink/internal/adapter/mdadapter"
	"github.com/jgivc/maskedlink/internal/adapter/mfadapter"
	"github.com/jgivc/maskedlink/internal/adapter/thumbadapter"
	"github.com/jgivc/maskedlink/internal/adapter/tpladapter"
	"github.com/jgivc/maskedlink/internal/config"
	"github.com/jgivc/maskedlink/internal/entity"
	httphandler "github.com/jgivc/maskedlink/internal/handler/http"
	"github.com/jgivc/maskedlink/internal/repository/manifest"
	rpage "github.com/jgivc/maskedlink/internal/repository/page"
	"github.com/jgivc/maskedlink/internal/service/page"
	"github.com/jgivc/maskedlink/internal/service/resolve"
	"github.com/jgivc/maskedlink/internal/storage/cache"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const (
	checkTimeout    = 15 * time.Second
	redisTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second

	pageHome = "home"
	pageBlog = "blog"
)

type ManifestRepository interface {
	GetManifest(ctx context.Context) ([]*entity.ManifestEntry, error)
}

type App struct {
	cfgPath string
	cfg     *config.Config
	srv     *http.Server
	handler http.Handler
	repo    ManifestRepository
	rdb     *redis.Client
	fs      afero.Fs
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
		fs:      afero.NewOsFs(),
	}
}

func (a *App) Start() {
	if err := a.build(); err != nil {
		panic(err)
	}

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: a.handler,
	}

	go func() {
		a.log.Info("Start listen", slog.String("addr", a.cfg.Listen))

		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) build() error {
	a.cfg = config.MustLoad(a.cfgPath)
	a.log = newLogger(a.cfg.LogLevel)

	src, err := mfadapter.NewSource(&a.cfg.Manifest, a.log)
	if err != nil {
		return fmt.Errorf("cannot create manifest source: %w", err)
	}

	var c manifest.Cache
	switch a.cfg.Cache.Backend {
	case config.CacheBackendMemory:
		c = cache.NewMemoryCache(a.cfg.Cache.TTL, a.log)
	case config.CacheBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()

		a.rdb, err = cache.NewRedisClient(ctx, a.cfg.Cache.RedisURL)
		if err != nil {
			return err
		}
		c = cache.NewRedisCache(a.rdb, a.log)
	}

	repo := manifest.NewManifestRepository(src, c, a.cfg.Cache.TTL, a.log)
	a.repo = repo

	thumbs := thumbadapter.NewThumbAdapter(&a.cfg.Thumbnail, a.log)
	resolver := resolve.NewResolveService(repo, thumbs, a.cfg.BaseURL, a.cfg.Thumbnail.Wait, a.log)

	tpl, err := tpladapter.NewTplAdapter(a.fs, a.cfg.Pages.TemplateFileName)
	if err != nil {
		return fmt.Errorf("cannot create template adapter: %w", err)
	}

	pageRepo, err := rpage.NewPageRepository(a.fs, a.cfg.Pages.Dir, mdadapter.NewMDAdapter(), a.log)
	if err != nil {
		return fmt.Errorf("cannot create page repository: %w", err)
	}
	pages := page.NewPageService(pageRepo, tpl, a.log)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", httphandler.NewPageHandler(pageHome, pages, a.log))
	mux.Handle("GET /blog/{$}", httphandler.NewPageHandler(pageBlog, pages, a.log))
	mux.Handle("GET /d/{maskedLink...}", httphandler.NewDetailHandler(resolver, tpl, a.log))
	mux.Handle("GET /download/{maskedLink...}", httphandler.NewDownloadHandler(resolver, a.log))
	mux.Handle("GET /api/d/{maskedLink...}", httphandler.NewAPIHandler(resolver, a.log))
	mux.Handle("GET /health", httphandler.NewHealthHandler())

	a.handler = httphandler.WithRequestLog(mux, a.log)

	return nil
}

// Check fetches the manifest and prints its size and any duplicate masked links.
func (a *App) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	fmt.Println("Checking manifest...")

	entries, err := a.repo.GetManifest(ctx)
	if err != nil {
		fmt.Printf("Cannot get manifest: %s\n", err)

		return
	}

	fmt.Printf("Entries: %d\n", len(entries))

	dups := resolve.Duplicates(entries)
	links := make([]string, 0, len(dups))
	for link := range dups {
		links = append(links, link)
	}
	sort.Strings(links)

	for i, link := range links {
		fmt.Printf("%d. %s listed %d times, first entry wins\n", i+1, link, dups[link])
	}

	fmt.Println("Done.")
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.srv != nil {
		a.srv.Shutdown(ctx)
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("Cannot close redis client", slog.Any("error", err))
		}
	}
}

func newLogger(level string) *slog.Logger {
	lo := &slog.HandlerOptions{}
	switch level {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}

	return slog.New(slog.NewTextHandler(os.Stderr, lo))
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	EnvPrefix  = "MASKEDLINK_"
	DotEnvFile = ".env"

	defaultListen            = ":8080"
	defaultBaseURL           = "https://filesharepro.us.kg/"
	defaultManifestURL       = "https://raw.githubusercontent.com/codecrumbs404/databse/main/file.json"
	defaultManifestTimeout   = 10 * time.Second
	defaultThumbnailTemplate = "https://pixeldrain.com/api/file/%s/thumbnail?width=%d&height=%d"
	defaultThumbnailSize     = 128
	defaultThumbnailTimeout  = 5 * time.Second
	defaultThumbnailWait     = 300 * time.Millisecond
	defaultCacheTTL          = time.Minute
	defaultPagesDir          = "pages"
)

type ManifestConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ThumbnailConfig struct {
	URLTemplate string        `yaml:"url_template"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	Timeout     time.Duration `yaml:"timeout"`
	// Wait bounds how long a page render waits for the probe.
	Wait time.Duration `yaml:"wait"`
}

type CacheConfig struct {
	Backend  string        `yaml:"backend"`
	TTL      time.Duration `yaml:"ttl"`
	RedisURL string        `yaml:"redis_url"`
}

type PagesConfig struct {
	Dir              string `yaml:"dir"`
	TemplateFileName string `yaml:"template"`
}

type Config struct {
	Listen    string          `yaml:"listen"`
	LogLevel  string          `yaml:"log_level"`
	BaseURL   string          `yaml:"base_url"`
	Manifest  ManifestConfig  `yaml:"manifest"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Cache     CacheConfig     `yaml:"cache"`
	Pages     PagesConfig     `yaml:"pages"`
}

func (c *Config) SetDefaults() {
	c.Listen = defaultListen
	c.LogLevel = LogLevelInfo
	c.BaseURL = defaultBaseURL
	c.Manifest = ManifestConfig{
		URL:     defaultManifestURL,
		Timeout: defaultManifestTimeout,
	}
	c.Thumbnail = ThumbnailConfig{
		URLTemplate: defaultThumbnailTemplate,
		Width:       defaultThumbnailSize,
		Height:      defaultThumbnailSize,
		Timeout:     defaultThumbnailTimeout,
		Wait:        defaultThumbnailWait,
	}
	c.Cache = CacheConfig{
		Backend: CacheBackendNone,
		TTL:     defaultCacheTTL,
	}
	c.Pages = PagesConfig{
		Dir: defaultPagesDir,
	}
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	if c.BaseURL == "" {
		return errors.New("base_url must be set")
	}

	if c.Manifest.URL == "" {
		return errors.New("manifest url must be set")
	}

	if !strings.Contains(c.Thumbnail.URLTemplate, "%s") {
		return fmt.Errorf("thumbnail url_template must contain %%s: %s", c.Thumbnail.URLTemplate)
	}

	switch c.Cache.Backend {
	case CacheBackendNone, CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("cache redis_url must be set for redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}

	return nil
}

// Load reads defaults, then the yaml file (if it exists), then environment
// overrides. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load %s: %w", DotEnvFile, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"LISTEN":                 &c.Listen,
		"LOG_LEVEL":              &c.LogLevel,
		"BASE_URL":               &c.BaseURL,
		"MANIFEST_URL":           &c.Manifest.URL,
		"THUMBNAIL_URL_TEMPLATE": &c.Thumbnail.URLTemplate,
		"CACHE_BACKEND":          &c.Cache.Backend,
		"CACHE_REDIS_URL":        &c.Cache.RedisURL,
		"PAGES_DIR":              &c.Pages.Dir,
		"PAGES_TEMPLATE":         &c.Pages.TemplateFileName,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"MANIFEST_TIMEOUT":  &c.Manifest.Timeout,
		"THUMBNAIL_TIMEOUT": &c.Thumbnail.Timeout,
		"THUMBNAIL_WAIT":    &c.Thumbnail.Wait,
		"CACHE_TTL":         &c.Cache.TTL,
	}
	for name, dst := range durations {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("cannot parse %s%s: %w", EnvPrefix, name, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"THUMBNAIL_WIDTH":  &c.Thumbnail.Width,
		"THUMBNAIL_HEIGHT": &c.Thumbnail.Height,
	}
	for name, dst := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("cannot parse %s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	return nil
}

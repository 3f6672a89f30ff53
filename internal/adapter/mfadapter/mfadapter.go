package mfadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jgivc/maskedlink/internal/common"
	"github.com/jgivc/maskedlink/internal/config"
	"github.com/jgivc/maskedlink/internal/entity"
	"github.com/spf13/afero"
)

const (
	schemeFile  = "file"
	schemeHTTP  = "http"
	schemeHTTPS = "https"

	maxManifestSize = 32 << 20
)

type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

type httpSource struct {
	url string
	cl  *http.Client
	log *slog.Logger
}

type fsSource struct {
	fs   afero.Fs
	path string
	log  *slog.Logger
}

// NewSource picks an http or filesystem source from the manifest url.
// file:// urls and bare paths are read from the local filesystem.
func NewSource(cfg *config.ManifestConfig, log *slog.Logger) (Source, error) {
	return NewSourceWithFS(afero.NewOsFs(), &http.Client{Timeout: cfg.Timeout}, cfg, log)
}

func NewSourceWithFS(fs afero.Fs, cl *http.Client, cfg *config.ManifestConfig, log *slog.Logger) (Source, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidSource, cfg.URL, err)
	}

	switch u.Scheme {
	case schemeHTTP, schemeHTTPS:
		return NewHTTPSource(cl, cfg.URL, log), nil
	case schemeFile:
		return NewFSSource(fs, u.Path, log), nil
	case "":
		return NewFSSource(fs, cfg.URL, log), nil
	}

	return nil, fmt.Errorf("%w: unsupported scheme %q", common.ErrInvalidSource, u.Scheme)
}

func NewHTTPSource(cl *http.Client, url string, log *slog.Logger) *httpSource {
	return &httpSource{
		url: url,
		cl:  cl,
		log: log.With(slog.String("item", "HTTPManifestSource")),
	}
}

func (s *httpSource) Location() string {
	return s.url
}

func (s *httpSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.cl.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cannot fetch manifest: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest body: %w", err)
	}

	s.log.Debug("Fetched manifest", slog.String("url", s.url), slog.Int("bytes", len(data)))

	return data, nil
}

func NewFSSource(fs afero.Fs, path string, log *slog.Logger) *fsSource {
	return &fsSource{
		fs:   fs,
		path: path,
		log:  log.With(slog.String("item", "FSManifestSource")),
	}
}

func (s *fsSource) Location() string {
	return schemeFile + "://" + s.path
}

func (s *fsSource) Fetch(ctx context.Context) ([]byte, error) {
	if strings.Contains(s.path, "..") {
		return nil, fmt.Errorf("invalid manifest path: %s", s.path)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", s.path, err)
	}

	s.log.Debug("Read manifest", slog.String("path", s.path), slog.Int("bytes", len(data)))

	return data, nil
}

// Decode parses a manifest document, a JSON array of entries.
func Decode(data []byte) ([]*entity.ManifestEntry, error) {
	var entries []*entity.ManifestEntry

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("cannot decode manifest: %w", err)
	}

	return entries, nil
}

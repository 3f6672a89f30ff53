package thumbadapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jgivc/maskedlink/internal/config"
)

type thumbAdapter struct {
	cfg *config.ThumbnailConfig
	cl  *http.Client
	log *slog.Logger
}

func NewThumbAdapter(cfg *config.ThumbnailConfig, log *slog.Logger) *thumbAdapter {
	return NewThumbAdapterWithClient(&http.Client{Timeout: cfg.Timeout}, cfg, log)
}

func NewThumbAdapterWithClient(cl *http.Client, cfg *config.ThumbnailConfig, log *slog.Logger) *thumbAdapter {
	return &thumbAdapter{
		cfg: cfg,
		cl:  cl,
		log: log.With(slog.String("item", "ThumbAdapter")),
	}
}

// URL builds the thumbnail address for a hosted file id.
func (a *thumbAdapter) URL(fileID string) string {
	return fmt.Sprintf(a.cfg.URLTemplate, url.PathEscape(fileID), a.cfg.Width, a.cfg.Height)
}

// Probe requests the thumbnail and reports its url when the host answers
// with a 2xx status. The body is drained and dropped; the page loads the
// image again from the same url.
func (a *thumbAdapter) Probe(ctx context.Context, fileID string) (string, error) {
	thumbURL := a.URL(fileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbURL, nil)
	if err != nil {
		return "", fmt.Errorf("cannot create request: %w", err)
	}

	resp, err := a.cl.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot fetch thumbnail %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("cannot fetch thumbnail %s: unexpected status %d", fileID, resp.StatusCode)
	}

	a.log.Debug("Thumbnail available", slog.String("file_id", fileID), slog.String("url", thumbURL))

	return thumbURL, nil
}

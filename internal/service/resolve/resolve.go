package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jgivc/maskedlink/internal/common"
	"github.com/jgivc/maskedlink/internal/entity"
	"github.com/jgivc/maskedlink/internal/util"
)

const (
	serviceName = "resolve"

	DownloadQueryParam = "id"
)

type ManifestRepository interface {
	GetManifest(ctx context.Context) ([]*entity.ManifestEntry, error)
}

type ThumbnailProber interface {
	Probe(ctx context.Context, fileID string) (string, error)
}

type resolveService struct {
	repo    ManifestRepository
	thumbs  ThumbnailProber
	baseURL string
	wait    time.Duration
	log     *slog.Logger
}

// NewResolveService creates the resolver. thumbs may be nil, and a
// non-positive wait disables the thumbnail probe.
func NewResolveService(repo ManifestRepository, thumbs ThumbnailProber, baseURL string, wait time.Duration, log *slog.Logger) *resolveService {
	return &resolveService{
		repo:    repo,
		thumbs:  thumbs,
		baseURL: baseURL,
		wait:    wait,
		log:     log.With(slog.String("service", serviceName)),
	}
}

// Lookup returns the first entry whose masked link equals fullLink, both
// sides stripped of one trailing slash, and the number of later entries
// that match too.
func Lookup(entries []*entity.ManifestEntry, fullLink string) (*entity.ManifestEntry, int) {
	want := util.TrimSlash(fullLink)

	var (
		found      *entity.ManifestEntry
		duplicates int
	)
	for _, entry := range entries {
		if entry == nil || util.TrimSlash(entry.MaskedLink) != want {
			continue
		}

		if found == nil {
			found = entry
		} else {
			duplicates++
		}
	}

	return found, duplicates
}

// DownloadURL appends the masked link as the id query parameter of originalLink.
func DownloadURL(originalLink, maskedLink string) string {
	return util.AppendQuery(originalLink, DownloadQueryParam, maskedLink)
}

// Run walks one masked link through loading, lookup and the thumbnail probe,
// calling emit on every state change. Nothing is emitted once ctx is done.
// The last emitted view is returned.
func (s *resolveService) Run(ctx context.Context, maskedLink string, emit func(entity.View)) entity.View {
	view, _ := s.run(ctx, maskedLink, emit)

	return view
}

// Resolve is Run without intermediate views. The error is nil only for a
// resolved view.
func (s *resolveService) Resolve(ctx context.Context, maskedLink string) (entity.View, error) {
	return s.run(ctx, maskedLink, nil)
}

// Download finds the entry for maskedLink and returns its download url.
func (s *resolveService) Download(ctx context.Context, maskedLink string) (string, error) {
	entry, err := s.find(ctx, maskedLink)
	if err != nil {
		return "", err
	}

	downloadURL := DownloadURL(entry.OriginalLink, maskedLink)
	s.log.Info("Download", slog.String("masked_link", maskedLink), slog.String("url", downloadURL))

	return downloadURL, nil
}

func (s *resolveService) find(ctx context.Context, maskedLink string) (*entity.ManifestEntry, error) {
	log := s.log.With(slog.String("masked_link", maskedLink))

	entries, err := s.repo.GetManifest(ctx)
	if err != nil {
		log.Error("Cannot get manifest", slog.Any("error", err))

		if errors.Is(err, common.ErrFetchFailed) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
	}

	fullLink := s.baseURL + maskedLink
	entry, duplicates := Lookup(entries, fullLink)
	if entry == nil {
		log.Info("Masked link not found", slog.String("full_link", fullLink))

		return nil, fmt.Errorf("%w: %s", common.ErrFileNotFound, maskedLink)
	}

	if duplicates > 0 {
		log.Warn("Duplicate masked link in manifest, first entry wins", slog.String("full_link", fullLink), slog.Int("duplicates", duplicates))
	}

	return entry, nil
}

func (s *resolveService) run(ctx context.Context, maskedLink string, emit func(entity.View)) (entity.View, error) {
	log := s.log.With(slog.String("masked_link", maskedLink))

	current := entity.View{State: entity.StateLoading, MaskedLink: maskedLink}
	send := func(v entity.View) bool {
		if ctx.Err() != nil {
			return false
		}

		current = v
		if emit != nil {
			emit(v)
		}

		return true
	}

	if !send(current) {
		return current, ctx.Err()
	}

	entry, err := s.find(ctx, maskedLink)
	if ctx.Err() != nil {
		log.Info("Resolution canceled")

		return current, ctx.Err()
	}

	if err != nil {
		state := entity.StateFetchFailed
		if errors.Is(err, common.ErrFileNotFound) {
			state = entity.StateNotFound
		}
		send(entity.View{State: state, MaskedLink: maskedLink})

		return current, err
	}

	resolved := entity.View{
		State:        entity.StateResolved,
		MaskedLink:   maskedLink,
		OriginalLink: entry.OriginalLink,
		Name:         entry.FileDetails.Name,
		Size:         entry.FileDetails.Size,
		MIMEType:     entry.FileDetails.MIMEType,
		DisplaySize:  util.FormatSize(entry.FileDetails.Size),
		DownloadURL:  DownloadURL(entry.OriginalLink, maskedLink),
	}

	if s.thumbs == nil || s.wait <= 0 || entry.FileDetails.ID == "" {
		send(resolved)

		return current, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()

	res := make(chan string, 1)
	go func(fileID string) {
		u, err := s.thumbs.Probe(probeCtx, fileID)
		if err != nil {
			log.Warn("Thumbnail unavailable", slog.String("file_id", fileID), slog.Any("error", err))
		}
		res <- u
	}(entry.FileDetails.ID)

	if !send(resolved) {
		return current, ctx.Err()
	}

	select {
	case u := <-res:
		if u != "" {
			resolved.ThumbnailURL = u
			send(resolved)
		}
	case <-probeCtx.Done():
		log.Info("Thumbnail probe did not finish in time", slog.Duration("wait", s.wait))
	}

	return current, nil
}

// Duplicates counts entries per normalized masked link and keeps the links
// listed more than once.
func Duplicates(entries []*entity.ManifestEntry) map[string]int {
	counts := make(map[string]int, len(entries))
	for _, entry := range entries {
		if entry != nil {
			counts[util.TrimSlash(entry.MaskedLink)]++
		}
	}

	for link, n := range counts {
		if n < 2 {
			delete(counts, link)
		}
	}

	return counts
}

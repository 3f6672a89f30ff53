package page

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jgivc/maskedlink/internal/entity"
)

const (
	serviceName = "page"
)

type PageRepository interface {
	GetPage(ctx context.Context, slug string) (*entity.Page, error)
}

type PageRenderer interface {
	Page(page *entity.Page) (string, error)
}

type pageService struct {
	repo     PageRepository
	renderer PageRenderer
	log      *slog.Logger
}

func NewPageService(repo PageRepository, renderer PageRenderer, log *slog.Logger) *pageService {
	return &pageService{
		repo:     repo,
		renderer: renderer,
		log:      log.With(slog.String("service", serviceName)),
	}
}

func (p *pageService) GetPage(ctx context.Context, slug string) (string, error) {
	page, err := p.repo.GetPage(ctx, slug)
	if err != nil {
		p.log.Error("Cannot get page", slog.String("slug", slug), slog.Any("error", err))

		return "", fmt.Errorf("cannot get page %s: %w", slug, err)
	}

	content, err := p.renderer.Page(page)
	if err != nil {
		p.log.Error("Cannot render page", slog.String("slug", slug), slog.Any("error", err))

		return "", fmt.Errorf("cannot render page %s: %w", slug, err)
	}

	return content, nil
}

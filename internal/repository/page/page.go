package page

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jgivc/maskedlink/internal/adapter/mdadapter"
	"github.com/jgivc/maskedlink/internal/common"
	"github.com/jgivc/maskedlink/internal/entity"
	"github.com/spf13/afero"
)

const (
	pageExt = ".md"
)

var (
	//go:embed defaults/*.md
	defaultPages embed.FS

	slugRegexp = regexp.MustCompile(`^[a-z\d][a-z\d-]*$`)
)

type MDAdapter interface {
	Render(src []byte) (string, *mdadapter.Frontmatter, error)
}

type pageRepository struct {
	fs       afero.Fs
	fallback afero.Fs
	dir      string
	md       MDAdapter
	log      *slog.Logger
}

// NewPageRepository serves <dir>/<slug>.md from fs. Pages missing there are
// taken from the built-in defaults.
func NewPageRepository(fsys afero.Fs, dir string, md MDAdapter, log *slog.Logger) (*pageRepository, error) {
	sub, err := fs.Sub(defaultPages, "defaults")
	if err != nil {
		return nil, fmt.Errorf("cannot open default pages: %w", err)
	}

	return &pageRepository{
		fs:       fsys,
		fallback: afero.FromIOFS{FS: sub},
		dir:      dir,
		md:       md,
		log:      log.With(slog.String("item", "PageRepository")),
	}, nil
}

func (r *pageRepository) GetPage(ctx context.Context, slug string) (*entity.Page, error) {
	if !slugRegexp.MatchString(slug) {
		return nil, common.ErrPageNotFound
	}

	data, err := r.read(slug)
	if err != nil {
		return nil, err
	}

	content, fm, err := r.md.Render(data)
	if err != nil {
		return nil, fmt.Errorf("cannot render page %s: %w", slug, err)
	}

	if fm.Disabled() {
		r.log.Debug("Page disabled", slog.String("slug", slug))

		return nil, common.ErrPageNotFound
	}

	title := fm.Title
	if title == "" {
		title = slug
	}

	return &entity.Page{
		Slug:    slug,
		Title:   title,
		Content: content,
	}, nil
}

func (r *pageRepository) read(slug string) ([]byte, error) {
	data, err := afero.ReadFile(r.fs, filepath.Join(r.dir, slug+pageExt))
	if err == nil {
		return data, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot read page %s: %w", slug, err)
	}

	data, err = afero.ReadFile(r.fallback, slug+pageExt)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrPageNotFound
		}

		return nil, fmt.Errorf("cannot read default page %s: %w", slug, err)
	}

	return data, nil
}

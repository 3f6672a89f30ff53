package mdadapter

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/frontmatter"
)

const (
	maskedLinkParserPriority = 199
)

type Frontmatter struct {
	Title   string `yaml:"title"`
	Enabled *bool  `yaml:"enabled"`
}

// Disabled reports whether the page was switched off with enabled: false.
func (f *Frontmatter) Disabled() bool {
	return f.Enabled != nil && !*f.Enabled
}

type maskedLinkExtender struct{}

func (e *maskedLinkExtender) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewMaskedLinkParser(), maskedLinkParserPriority),
		),
	)
}

type mdAdapter struct {
	md goldmark.Markdown
}

func NewMDAdapter() *mdAdapter {
	return &mdAdapter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				&frontmatter.Extender{},
				&maskedLinkExtender{},
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
	}
}

// Render converts markdown to HTML and decodes its front matter, if any.
func (a *mdAdapter) Render(src []byte) (string, *Frontmatter, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext()
	if err := a.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return "", nil, fmt.Errorf("cannot convert markdown: %w", err)
	}

	fm := &Frontmatter{}
	if data := frontmatter.Get(ctx); data != nil {
		if err := data.Decode(fm); err != nil {
			return "", nil, fmt.Errorf("cannot decode frontmatter: %w", err)
		}
	}

	return buf.String(), fm, nil
}

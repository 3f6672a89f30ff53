package tpladapter

import (
	"bytes"
	"fmt"
	"html/template"

	_ "embed"

	"github.com/jgivc/maskedlink/internal/entity"
	"github.com/spf13/afero"
)

const (
	templateNameLoading  = "LOADING"
	templateNameNotFound = "NOT_FOUND"
	templateNameDetail   = "DETAIL"
	templateNamePage     = "PAGE"
)

//go:embed template.html
var defaultTemplate string

type pageContext struct {
	Title   string
	Content template.HTML
}

type tplAdapter struct {
	tpl *template.Template
}

// NewTplAdapter parses the embedded templates, or templateFileName from fs
// when it is set. The file must define LOADING, NOT_FOUND, DETAIL and PAGE.
func NewTplAdapter(fs afero.Fs, templateFileName string) (*tplAdapter, error) {
	src := defaultTemplate
	if templateFileName != "" {
		data, err := afero.ReadFile(fs, templateFileName)
		if err != nil {
			return nil, fmt.Errorf("cannot read template: %w", err)
		}

		src = string(data)
	}

	tpl, err := template.New("").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("cannot parse template: %w", err)
	}

	for _, name := range []string{templateNameLoading, templateNameNotFound, templateNameDetail, templateNamePage} {
		if tpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %s must be defined", name)
		}
	}

	return &tplAdapter{tpl: tpl}, nil
}

// View renders a view. Not found and fetch failed look the same.
func (a *tplAdapter) View(view entity.View) (string, error) {
	name := templateNameLoading
	switch view.State {
	case entity.StateNotFound, entity.StateFetchFailed:
		name = templateNameNotFound
	case entity.StateResolved:
		name = templateNameDetail
	}

	return a.execute(name, view)
}

// Page renders a markdown page. Content is trusted HTML.
func (a *tplAdapter) Page(page *entity.Page) (string, error) {
	return a.execute(templateNamePage, &pageContext{
		Title:   page.Title,
		Content: template.HTML(page.Content),
	})
}

func (a *tplAdapter) execute(name string, data any) (string, error) {
	buf := bytes.Buffer{}
	if err := a.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("cannot execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

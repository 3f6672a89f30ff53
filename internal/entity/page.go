package entity

// Page is a static markdown page rendered to HTML.
type Page struct {
	Slug    string
	Title   string
	Content string // Rendered HTML
}

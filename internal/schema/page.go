package schema

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/mjessen/formpilot/internal/errors"
)

// Page is a handle on one loaded page: its URL plus the parsed document.
// The extractor reads it; the filler mutates it in place.
type Page struct {
	URL  string
	Root *html.Node
}

// LoadPage parses an HTML document into a Page.
func LoadPage(url string, r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.NewInvalidRequest("failed to parse page HTML: " + err.Error())
	}
	return &Page{URL: strings.TrimSpace(url), Root: root}, nil
}

// LoadPageString parses an HTML string into a Page.
func LoadPageString(url, doc string) (*Page, error) {
	return LoadPage(url, strings.NewReader(doc))
}

// Render serializes the page back to HTML.
func (p *Page) Render(w io.Writer) error {
	return html.Render(w, p.Root)
}

// RenderString serializes the page back to an HTML string.
func (p *Page) RenderString() (string, error) {
	var sb strings.Builder
	if err := p.Render(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

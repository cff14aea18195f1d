// Package archive persists extracted form schemas for later reuse and audit.
// Captures are immutable once created; the only mutation is whole-record
// deletion.
package archive

import (
	"github.com/mjessen/formpilot/internal/schema"
)

// Capture is a persisted FormSchema with a system-assigned id and creation
// timestamp.
type Capture struct {
	// ID is a ULID that uniquely identifies this capture
	ID string `json:"id"`

	// URL is the page the schema was extracted from
	URL string `json:"url"`

	// Title is the page title at capture time
	Title string `json:"title"`

	// Fields is the captured field list, in page document order
	Fields []schema.Field `json:"fields"`

	// Headings and Buttons are the best-effort page context
	Headings []string `json:"headings,omitempty"`
	Buttons  []string `json:"buttons,omitempty"`

	// MainContent is the plain-text page excerpt
	MainContent string `json:"main_content,omitempty"`

	// PageDescription is the page's meta description
	PageDescription string `json:"page_description,omitempty"`

	// CreatedAt is the Unix timestamp when the capture was created
	CreatedAt int64 `json:"created_at"`
}

// Schema reconstructs the FormSchema this capture was made from.
func (c *Capture) Schema() *schema.FormSchema {
	return &schema.FormSchema{
		URL:             c.URL,
		Title:           c.Title,
		Fields:          c.Fields,
		Headings:        c.Headings,
		Buttons:         c.Buttons,
		MainContent:     c.MainContent,
		PageDescription: c.PageDescription,
	}
}

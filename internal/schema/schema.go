// Package schema turns a loaded page into a structural description of its
// form. The schema carries field identifiers, labels, and types, never the
// user's data; it is the only shape of page information that crosses the
// remote-agent boundary.
package schema

// Field describes a single fillable form element.
type Field struct {
	// ID identifies the element: its id attribute, falling back to name.
	// Unique within one schema.
	ID string `json:"id"`

	// Label is the best-effort human label for the field.
	Label string `json:"label"`

	// Type is the element kind: text, email, tel, date, number, password,
	// checkbox, radio, select, textarea. Unrecognized input types pass
	// through unchanged.
	Type string `json:"type"`

	// Required mirrors the element's required attribute.
	Required bool `json:"required"`

	// CurrentValue is the value already present on the page, if any.
	CurrentValue string `json:"current_value,omitempty"`
}

// FormSchema is the structural capture of one page's form surface.
// Fields preserve page document order.
type FormSchema struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Fields          []Field  `json:"fields"`
	Headings        []string `json:"headings,omitempty"`
	Buttons         []string `json:"buttons,omitempty"`
	MainContent     string   `json:"main_content,omitempty"`
	PageDescription string   `json:"page_description,omitempty"`
}

// FieldByID returns the field with the given id, or nil.
func (s *FormSchema) FieldByID(id string) *Field {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i]
		}
	}
	return nil
}

package schema

import (
	"strings"

	"golang.org/x/net/html"
)

// mainContentMax bounds the plain-text excerpt taken from the page body.
const mainContentMax = 500

// inputTypesSkipped are input types that carry no user data to fill.
var inputTypesSkipped = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"image":  true,
	"reset":  true,
}

// Extract walks the page in document order and builds its FormSchema.
// A page without form elements yields an empty Fields slice, never an error.
// The page is only read, never mutated.
func Extract(p *Page) *FormSchema {
	s := &FormSchema{
		URL:    p.URL,
		Fields: []Field{},
	}

	labels := collectLabels(p.Root)
	seen := map[string]bool{}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if s.Title == "" {
					s.Title = strings.TrimSpace(textContent(n))
				}
			case "meta":
				if strings.EqualFold(attr(n, "name"), "description") && s.PageDescription == "" {
					s.PageDescription = strings.TrimSpace(attr(n, "content"))
				}
			case "h1", "h2", "h3":
				if text := strings.TrimSpace(textContent(n)); text != "" {
					s.Headings = append(s.Headings, text)
				}
			case "button":
				if text := strings.TrimSpace(textContent(n)); text != "" {
					s.Buttons = append(s.Buttons, text)
				}
			case "input", "select", "textarea":
				if f, ok := extractField(n, labels); ok && !seen[f.ID] {
					seen[f.ID] = true
					s.Fields = append(s.Fields, f)
				}
				if n.Data == "input" {
					typ := strings.ToLower(attr(n, "type"))
					if typ == "submit" || typ == "button" {
						if v := strings.TrimSpace(attr(n, "value")); v != "" {
							s.Buttons = append(s.Buttons, v)
						}
					}
				}
			case "main":
				if s.MainContent == "" {
					s.MainContent = excerpt(textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p.Root)

	if s.MainContent == "" {
		if body := findElement(p.Root, "body"); body != nil {
			s.MainContent = excerpt(textContent(body))
		}
	}

	return s
}

// extractField builds a Field from an input/select/textarea node.
// Returns false for elements that are unfillable or unaddressable.
func extractField(n *html.Node, labels map[string]string) (Field, bool) {
	id := attr(n, "id")
	if id == "" {
		id = attr(n, "name")
	}
	if id == "" {
		return Field{}, false
	}

	f := Field{
		ID:       id,
		Required: hasAttr(n, "required"),
	}

	switch n.Data {
	case "select":
		f.Type = "select"
		f.CurrentValue = selectedOption(n)
	case "textarea":
		f.Type = "textarea"
		f.CurrentValue = strings.TrimSpace(textContent(n))
	default:
		typ := strings.ToLower(attr(n, "type"))
		if typ == "" {
			typ = "text"
		}
		if inputTypesSkipped[typ] {
			return Field{}, false
		}
		f.Type = typ
		f.CurrentValue = attr(n, "value")
	}

	f.Label = fieldLabel(n, labels)
	return f, true
}

// fieldLabel resolves the best-effort label: <label for=...>, wrapping label,
// aria-label, then placeholder.
func fieldLabel(n *html.Node, labels map[string]string) string {
	if id := attr(n, "id"); id != "" {
		if label, ok := labels[id]; ok {
			return label
		}
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "label" {
			return strings.TrimSpace(textContent(p))
		}
	}
	if label := strings.TrimSpace(attr(n, "aria-label")); label != "" {
		return label
	}
	return strings.TrimSpace(attr(n, "placeholder"))
}

// collectLabels maps label for-targets to their text in one pre-pass.
func collectLabels(root *html.Node) map[string]string {
	labels := map[string]string{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "label" {
			if target := attr(n, "for"); target != "" {
				if _, dup := labels[target]; !dup {
					labels[target] = strings.TrimSpace(textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return labels
}

// selectedOption returns the value of the selected <option>, if any.
func selectedOption(sel *html.Node) string {
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "option" && hasAttr(c, "selected") {
			if v := attr(c, "value"); v != "" {
				return v
			}
			return strings.TrimSpace(textContent(c))
		}
	}
	return ""
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hasAttr reports whether the named attribute is present at all.
func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// findElement returns the first element with the given tag, depth-first.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// excerpt collapses whitespace and truncates to mainContentMax runes.
func excerpt(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) > mainContentMax {
		return string(runes[:mainContentMax])
	}
	return collapsed
}

// Package fill writes resolved values into a live page. It is the only place
// real personal data meets page content, and it runs entirely on-device.
package fill

import (
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/mjessen/formpilot/internal/errors"
	"github.com/mjessen/formpilot/internal/schema"
)

// Report summarizes one fill pass. Misses are soft: a schema can be stale
// relative to a since-changed page, and a missing element just isn't filled.
type Report struct {
	Filled    int      `json:"filled"`
	Missed    int      `json:"missed"`
	MissedIDs []string `json:"missed_ids,omitempty"`
}

// Apply writes each value into the page element matching its field id.
// It refuses to touch a page other than the one the schema came from: a fill
// instruction that arrives after the user navigated away must be discarded,
// not applied. Missing elements are counted and skipped; the rest of the
// entries still apply. Submission is never triggered.
func Apply(page *schema.Page, schemaURL string, values map[string]string) (*Report, error) {
	if !sameURL(page.URL, schemaURL) {
		return nil, errors.NewStalePage(schemaURL, page.URL)
	}

	elements := indexElements(page.Root)
	report := &Report{}

	// Deterministic application order for reproducible reports.
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n, ok := elements[id]
		if !ok {
			report.Missed++
			report.MissedIDs = append(report.MissedIDs, id)
			continue
		}
		if setElementValue(n, values[id]) {
			report.Filled++
		} else {
			report.Missed++
			report.MissedIDs = append(report.MissedIDs, id)
		}
	}

	return report, nil
}

// sameURL compares page URLs ignoring a trailing slash.
func sameURL(a, b string) bool {
	return strings.TrimSuffix(strings.TrimSpace(a), "/") == strings.TrimSuffix(strings.TrimSpace(b), "/")
}

// indexElements maps id-or-name to the fillable element, first occurrence
// wins, matching how the extractor addresses fields.
func indexElements(root *html.Node) map[string]*html.Node {
	elements := map[string]*html.Node{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "input", "select", "textarea":
				id := attr(n, "id")
				if id == "" {
					id = attr(n, "name")
				}
				if id != "" {
					if _, dup := elements[id]; !dup {
						elements[id] = n
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return elements
}

// setElementValue writes value into the element, respecting its kind.
func setElementValue(n *html.Node, value string) bool {
	switch n.Data {
	case "textarea":
		setTextContent(n, value)
		return true
	case "select":
		return selectOption(n, value)
	case "input":
		typ := strings.ToLower(attr(n, "type"))
		if typ == "checkbox" || typ == "radio" {
			if truthy(value) {
				setAttr(n, "checked", "checked")
			} else {
				removeAttr(n, "checked")
			}
			return true
		}
		setAttr(n, "value", value)
		return true
	}
	return false
}

// truthy interprets a resolved string for checkbox/radio fields: non-empty
// and not an explicit "false"/"0" means checked.
func truthy(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v != "" && v != "false" && v != "0"
}

// selectOption marks the option matching value (by value attr, then by label).
// No matching option counts as a miss.
func selectOption(sel *html.Node, value string) bool {
	var match *html.Node
	var options []*html.Node
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "option" {
			options = append(options, c)
			if match == nil && attr(c, "value") == value {
				match = c
			}
		}
	}
	if match == nil {
		for _, opt := range options {
			if strings.EqualFold(strings.TrimSpace(textContent(opt)), strings.TrimSpace(value)) {
				match = opt
				break
			}
		}
	}
	if match == nil {
		return false
	}
	for _, opt := range options {
		removeAttr(opt, "selected")
	}
	setAttr(match, "selected", "selected")
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func setTextContent(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

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

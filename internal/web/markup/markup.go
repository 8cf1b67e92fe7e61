// Package markup escapes text for HTML and builds HTML tags
package markup

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Escape escapes s for use as HTML text content
func Escape(s string) string {
	return html.EscapeString(s)
}

// EscapeAttr escapes s for use inside a double-quoted attribute value
func EscapeAttr(s string) string {
	return html.EscapeString(s)
}

// EscapeNl escapes s and turns every line break into a <br/> element
func EscapeNl(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(Escape(s), "\n", "<br/>\n")
}

// Attrs holds tag attributes by name
type Attrs map[string]string

// Merge returns a new Attrs holding a's attributes overridden by other's
func (a Attrs) Merge(other Attrs) Attrs {
	merged := make(Attrs, len(a)+len(other))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

var leading = map[string]int{"type": 0, "name": 1, "value": 2, "id": 3}

func (a Attrs) list() []html.Attribute {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, iok := leading[keys[i]]
		pj, jok := leading[keys[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})

	attrs := make([]html.Attribute, len(keys))
	for i, k := range keys {
		attrs[i] = html.Attribute{Key: k, Val: a[k]}
	}
	return attrs
}

// Element returns an element node named name with the given attributes and
// children. Nil children are skipped
func Element(name string, attrs Attrs, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: name, Attr: attrs.list()}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

// Text returns a text node; its content is escaped on rendering
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Raw returns a node whose content is rendered verbatim
func Raw(s string) *html.Node {
	return &html.Node{Type: html.RawNode, Data: s}
}

// Render renders nodes one after another. Rendering stops at the first
// malformed node
func Render(nodes ...*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := html.Render(&b, n); err != nil {
			break
		}
	}
	return b.String()
}

// BuildTag renders a single element
func BuildTag(name string, attrs Attrs, children ...*html.Node) string {
	return Render(Element(name, attrs, children...))
}

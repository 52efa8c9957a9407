package source

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// Document wraps one fetched page: the raw body plus its parsed node tree.
// The raw body is kept because a few heuristics work on verbatim markup
// (marker substrings, link patterns) rather than on the parsed tree.
type Document struct {
	path string
	raw  string
	root *html.Node
}

// ParseDocument builds a Document from a raw page body. The path is the
// site-relative resource the body was fetched from and is carried for
// diagnostics only.
func ParseDocument(resourcePath string, body []byte) (*Document, error) {
	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse document %q: %w", resourcePath, err)
	}
	return &Document{path: resourcePath, raw: string(body), root: root}, nil
}

// Path returns the site-relative path the document was fetched from.
func (d *Document) Path() string { return d.path }

// Raw returns the verbatim page body.
func (d *Document) Raw() string { return d.raw }

// Contains reports whether the raw body contains the given substring.
func (d *Document) Contains(substr string) bool {
	return strings.Contains(d.raw, substr)
}

// Root returns the parsed tree's root node.
func (d *Document) Root() *html.Node { return d.root }

// ElementByID returns the first element carrying the given id, or nil.
func (d *Document) ElementByID(id string) *html.Node {
	return FindFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, "id") == id
	})
}

// ElementsByClass returns all elements carrying every one of the given classes.
func (d *Document) ElementsByClass(classes ...string) []*html.Node {
	return ElementsByClass(d.root, classes...)
}

// ElementByAttr returns the first element of the given tag whose attribute
// equals value, or nil. An empty tag matches any element.
func (d *Document) ElementByAttr(tag, attr, value string) *html.Node {
	return FindFirst(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		if tag != "" && n.Data != tag {
			return false
		}
		return Attr(n, attr) == value
	})
}

// MetaContent returns the content attribute of the named meta element.
func (d *Document) MetaContent(name string) string {
	meta := d.ElementByAttr("meta", "name", name)
	if meta == nil {
		return ""
	}
	return Attr(meta, "content")
}

// ScriptByID returns the text payload of the script element with the given
// id, typically an embedded JSON blob.
func (d *Document) ScriptByID(id string) string {
	node := FindFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "script" && Attr(n, "id") == id
	})
	if node == nil {
		return ""
	}
	return Text(node)
}

// AnchorHrefs returns the href of every anchor in the document whose href
// contains the given substring, in document order.
func (d *Document) AnchorHrefs(substr string) []string {
	return AnchorHrefs(d.root, substr)
}

// Attr returns the value of the named attribute on a node, or "".
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasClass reports whether the node's class attribute includes the class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Text returns the concatenated text content of a subtree, trimmed.
func Text(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

// FindFirst returns the first node (depth-first, document order) matching
// the predicate, or nil.
func FindFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node in the subtree matching the predicate, in
// document order.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if n == nil {
		return out
	}
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if pred(node) {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// ElementsByClass returns all elements in the subtree carrying every one of
// the given classes.
func ElementsByClass(n *html.Node, classes ...string) []*html.Node {
	return FindAll(n, func(node *html.Node) bool {
		if node.Type != html.ElementNode {
			return false
		}
		for _, class := range classes {
			if !HasClass(node, class) {
				return false
			}
		}
		return true
	})
}

// FirstByClass returns the first element in the subtree carrying the class.
func FirstByClass(n *html.Node, class string) *html.Node {
	return FindFirst(n, func(node *html.Node) bool {
		return node.Type == html.ElementNode && HasClass(node, class)
	})
}

// FirstByTag returns the first element of the given tag in the subtree.
func FirstByTag(n *html.Node, tag string) *html.Node {
	return FindFirst(n, func(node *html.Node) bool {
		return node.Type == html.ElementNode && node.Data == tag
	})
}

// AnchorHrefs returns the href of every anchor in the subtree whose href
// contains the given substring, in document order.
func AnchorHrefs(n *html.Node, substr string) []string {
	var hrefs []string
	for _, anchor := range FindAll(n, func(node *html.Node) bool {
		return node.Type == html.ElementNode && node.Data == "a"
	}) {
		href := Attr(anchor, "href")
		if href != "" && strings.Contains(href, substr) {
			hrefs = append(hrefs, href)
		}
	}
	return hrefs
}

// BookID normalizes an href or id fragment to the bare book identifier.
// Hrefs from detail pages, shelf listings, review rows, and series listings
// all end in the same trailing segment; reducing every variant to that
// segment keeps a single id namespace. Query strings are stripped.
func BookID(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if idx := strings.IndexAny(href, "?#"); idx >= 0 {
		href = href[:idx]
	}
	return path.Base(href)
}

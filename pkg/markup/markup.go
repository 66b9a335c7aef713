package markup

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrEmptyFragment is returned when a fragment contains no element nodes.
var ErrEmptyFragment = errors.New("markup: fragment has no elements")

// ParseFragment parses an HTML fragment in a <body> context and returns its
// top-level element nodes. Text and comment nodes between elements are
// dropped.
func ParseFragment(raw string) ([]*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(raw), context)
	if err != nil {
		return nil, err
	}
	out := make([]*html.Node, 0, len(nodes))
	for _, node := range nodes {
		if node.Type == html.ElementNode {
			out = append(out, node)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyFragment
	}
	return out, nil
}

// ParseDocument parses a complete HTML page.
func ParseDocument(raw string) (*html.Node, error) {
	return html.Parse(strings.NewReader(raw))
}

// Attr returns the value of the named attribute.
func Attr(node *html.Node, key string) (string, bool) {
	if node == nil {
		return "", false
	}
	for _, attr := range node.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}

// AttrOr returns the trimmed attribute value, or fallback when the attribute
// is missing or blank.
func AttrOr(node *html.Node, key, fallback string) string {
	if value, ok := Attr(node, key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

// HasAttr reports whether the attribute is present, regardless of value.
func HasAttr(node *html.Node, key string) bool {
	_, ok := Attr(node, key)
	return ok
}

// SetAttr sets or replaces an attribute value.
func SetAttr(node *html.Node, key, value string) {
	if node == nil {
		return
	}
	for i := range node.Attr {
		if node.Attr[i].Namespace == "" && strings.EqualFold(node.Attr[i].Key, key) {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr deletes an attribute when present.
func RemoveAttr(node *html.Node, key string) {
	if node == nil {
		return
	}
	kept := node.Attr[:0]
	for _, attr := range node.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			continue
		}
		kept = append(kept, attr)
	}
	node.Attr = kept
}

// HasClass reports whether the class attribute contains the given class.
func HasClass(node *html.Node, class string) bool {
	value, ok := Attr(node, "class")
	if !ok {
		return false
	}
	for _, candidate := range strings.Fields(value) {
		if candidate == class {
			return true
		}
	}
	return false
}

// AddClass appends a class unless it is already present.
func AddClass(node *html.Node, class string) {
	if node == nil || class == "" || HasClass(node, class) {
		return
	}
	current, _ := Attr(node, "class")
	SetAttr(node, "class", strings.TrimSpace(current+" "+class))
}

// RemoveClass removes every occurrence of class.
func RemoveClass(node *html.Node, class string) {
	current, ok := Attr(node, "class")
	if !ok {
		return
	}
	fields := strings.Fields(current)
	kept := fields[:0]
	for _, candidate := range fields {
		if candidate != class {
			kept = append(kept, candidate)
		}
	}
	SetAttr(node, "class", strings.Join(kept, " "))
}

// Walk visits node and its descendants depth-first in document order. When
// visit returns false the node's children are skipped.
func Walk(node *html.Node, visit func(*html.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		Walk(child, visit)
	}
}

// FindAll returns every element under root (root included) matching fn.
func FindAll(root *html.Node, fn func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(root, func(node *html.Node) bool {
		if node.Type == html.ElementNode && fn(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}

// FindFirst returns the first element under root matching fn, or nil.
func FindFirst(root *html.Node, fn func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(root, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if node.Type == html.ElementNode && fn(node) {
			found = node
			return false
		}
		return true
	})
	return found
}

// ByTag matches elements with the given tag name.
func ByTag(tag string) func(*html.Node) bool {
	return func(node *html.Node) bool {
		return strings.EqualFold(node.Data, tag)
	}
}

// ByClass matches elements carrying the given class.
func ByClass(class string) func(*html.Node) bool {
	return func(node *html.Node) bool {
		return HasClass(node, class)
	}
}

// Text concatenates the text content of node and its descendants.
func Text(node *html.Node) string {
	var b strings.Builder
	Walk(node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// SetText replaces the children of node with a single text node.
func SetText(node *html.Node, text string) {
	if node == nil {
		return
	}
	for node.FirstChild != nil {
		node.RemoveChild(node.FirstChild)
	}
	node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Detach removes node from its parent, if any.
func Detach(node *html.Node) {
	if node != nil && node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}

// Render serialises node back to HTML.
func Render(node *html.Node) (string, error) {
	if node == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// IsTrue interprets the boolean flag values emitted by server templates
// ("True", "true", "1", "yes").
func IsTrue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

package gojadom

import (
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/odvcencio/webdriverd/pkg/browser"
)

// Node is a reference to an element of a Document.
type Node struct {
	doc *Document
	n   *html.Node
}

// Parent returns the parent element, or nil at the top of the element tree.
func (n *Node) Parent() browser.Node {
	p := n.n.Parent
	if p == nil || p.Type == html.DocumentNode {
		return nil
	}
	return &Node{doc: n.doc, n: p}
}

// IsDocumentRoot reports whether n is the documentElement of a live document.
func (n *Node) IsDocumentRoot() bool {
	return n.doc.live && n.n.Parent == n.doc.root && n.n.Type == html.ElementNode
}

func (n *Node) Equal(other browser.Node) bool {
	o, ok := other.(*Node)
	return ok && o.n == n.n
}

// HTML returns the underlying parse tree node.
func (n *Node) HTML() *html.Node {
	return n.n
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func getAttr(n *html.Node, key string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	key = strings.ToLower(key)
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attrOr(n *html.Node, key, fallback string) string {
	if v, ok := getAttr(n, key); ok {
		return v
	}
	return fallback
}

func setAttr(n *html.Node, key, val string) {
	key = strings.ToLower(key)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	key = strings.ToLower(key)
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func setBoolAttr(n *html.Node, key string, on bool) {
	if on {
		setAttr(n, key, "")
		return
	}
	removeAttr(n, key)
}

func isDisabled(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Input, atom.Button, atom.Select, atom.Textarea, atom.Option, atom.Fieldset:
		_, ok := getAttr(n, "disabled")
		return ok
	}
	return false
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && match(c) {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

// findAll returns matching descendant elements of root in document order.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

func byTagName(root *html.Node, tag string) []*html.Node {
	tag = strings.ToLower(tag)
	return findAll(root, func(n *html.Node) bool {
		return tag == "*" || n.Data == tag
	})
}

func byClassName(root *html.Node, names string) []*html.Node {
	want := strings.Fields(names)
	if len(want) == 0 {
		return nil
	}
	return findAll(root, func(n *html.Node) bool {
		have := strings.Fields(attrOr(n, "class", ""))
		for _, w := range want {
			found := false
			for _, h := range have {
				if h == w {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	})
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func closest(n *html.Node, a atom.Atom) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == a {
			return p
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	return htmlquery.InnerText(n)
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

func setInnerHTML(n *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return err
	}
	setText(n, "")
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// visibleText approximates innerText: rendered text with whitespace collapsed and
// hidden subtrees skipped.
func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if display, _ := computedStyle(n); display == "none" {
				return
			}
			if n.DataAtom == atom.Br {
				b.WriteString("\n")
				return
			}
		}
		block := n.Type == html.ElementNode && defaultDisplay(n) == "block"
		if block {
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteString("\n")
		}
	}
	walk(n)

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// computedStyle resolves display for n and visibility, which is inherited.
func computedStyle(n *html.Node) (display, visibility string) {
	display = defaultDisplay(n)
	if _, hidden := getAttr(n, "hidden"); hidden {
		display = "none"
	}
	if v, ok := inlineStyle(n)["display"]; ok {
		display = v
	}
	visibility = "visible"
	for p := n; p != nil; p = p.Parent {
		if v, ok := inlineStyle(p)["visibility"]; ok {
			visibility = v
			break
		}
	}
	return display, visibility
}

func inlineStyle(n *html.Node) map[string]string {
	raw, ok := getAttr(n, "style")
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for _, decl := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
		out[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(v)
	}
	return out
}

func defaultDisplay(n *html.Node) string {
	if n.Type != html.ElementNode {
		return "inline"
	}
	switch n.DataAtom {
	case atom.Head, atom.Script, atom.Style, atom.Title, atom.Meta, atom.Link, atom.Template, atom.Noscript:
		return "none"
	case atom.Input:
		if strings.EqualFold(attrOr(n, "type", ""), "hidden") {
			return "none"
		}
		return "inline"
	case atom.A, atom.Span, atom.B, atom.I, atom.Em, atom.Strong, atom.Label, atom.Img,
		atom.Button, atom.Select, atom.Textarea, atom.Code, atom.Small, atom.Sub, atom.Sup, atom.Iframe:
		return "inline"
	}
	return "block"
}

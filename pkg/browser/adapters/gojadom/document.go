package gojadom

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/odvcencio/webdriverd/pkg/browser"
)

const markerAttr = "data-webdriverd-marker"

// Document is a parsed page hosted by a window or frame.
type Document struct {
	ctx    *browsingContext
	root   *html.Node
	url    string
	origin string
	// live is cleared when the hosting context commits a new document.
	live   bool
	engine *Engine
	frames []*browsingContext
}

func newDocument(ctx *browsingContext, root *html.Node, rawURL, origin string) *Document {
	return &Document{
		ctx:    ctx,
		root:   root,
		url:    rawURL,
		origin: origin,
		live:   true,
	}
}

func (d *Document) URL() string {
	return d.url
}

// Frames returns the attached child frames in document order.
func (d *Document) Frames() []browser.Frame {
	out := make([]browser.Frame, 0, len(d.frames))
	for _, c := range d.frames {
		if !c.detached {
			out = append(out, &Frame{browsingContext: c})
		}
	}
	return out
}

// Root returns the documentElement.
func (d *Document) Root() browser.Node {
	el := d.documentElement()
	if el == nil {
		return nil
	}
	return &Node{doc: d, n: el}
}

func (d *Document) Engine() (browser.ScriptEngine, error) {
	if !d.live {
		return nil, browser.ErrDocumentReplaced
	}
	if d.engine == nil {
		return nil, browser.ErrEngineNotStarted
	}
	return d.engine, nil
}

// InjectMarker appends an empty script element, which starts the engine the same way a
// page script would.
func (d *Document) InjectMarker() (func() error, error) {
	if !d.live {
		return nil, browser.ErrDocumentReplaced
	}
	parent := d.head()
	if parent == nil {
		parent = d.documentElement()
	}
	if parent == nil {
		return nil, browser.ErrNoDocument
	}
	marker := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     []html.Attribute{{Key: markerAttr}},
	}
	parent.AppendChild(marker)
	d.startEngine()
	return func() error {
		if marker.Parent == nil {
			return errors.New("marker already removed")
		}
		marker.Parent.RemoveChild(marker)
		return nil
	}, nil
}

func (d *Document) startEngine() *Engine {
	if d.engine == nil {
		host := d.ctx.host
		d.engine = newEngine(d, host.rt.cfg.ScriptTimeout, host.logger.With(zap.String("document", d.url)))
	}
	return d.engine
}

// runScripts executes inline classic scripts in document order. Failures are logged and
// do not stop later scripts.
func (d *Document) runScripts() {
	scripts := findAll(d.root, func(n *html.Node) bool {
		if n.DataAtom != atom.Script {
			return false
		}
		if _, ok := getAttr(n, "src"); ok {
			return false
		}
		typ := strings.ToLower(strings.TrimSpace(attrOr(n, "type", "")))
		return typ == "" || typ == "text/javascript" || typ == "application/javascript"
	})
	for i, s := range scripts {
		if !d.live {
			return
		}
		src := textContent(s)
		engine := d.startEngine()
		if strings.TrimSpace(src) == "" {
			continue
		}
		if err := engine.runSource(fmt.Sprintf("%s#script%d", d.url, i), src); err != nil {
			d.ctx.host.logger.Debug("page script failed", zap.String("url", d.url), zap.Error(err))
		}
	}
}

// loadNewFrames creates browsing contexts for iframes not yet seen.
func (d *Document) loadNewFrames() {
	if !d.live {
		return
	}
	known := make(map[*html.Node]bool, len(d.frames))
	for _, c := range d.frames {
		known[c.element] = true
	}
	maxDepth := d.ctx.host.rt.cfg.MaxFrameDepth
	for _, el := range byTagName(d.root, "iframe") {
		if known[el] {
			continue
		}
		if d.ctx.depth+1 > maxDepth {
			d.ctx.host.logger.Warn("iframe nesting limit reached", zap.Int("depth", d.ctx.depth+1))
			continue
		}
		child := &browsingContext{
			host:    d.ctx.host,
			top:     d.ctx.top,
			parent:  d,
			depth:   d.ctx.depth + 1,
			element: el,
			state:   browser.ReadyStateUninitialized,
		}
		d.frames = append(d.frames, child)
		var err error
		if srcdoc, ok := getAttr(el, "srcdoc"); ok {
			err = child.navigate("about:srcdoc", &Page{URL: "about:srcdoc", HTML: srcdoc})
		} else {
			target := "about:blank"
			if src, ok := getAttr(el, "src"); ok && strings.TrimSpace(src) != "" {
				target = d.resolve(src)
			}
			err = child.navigate(target, nil)
		}
		if err != nil {
			d.ctx.host.logger.Warn("iframe navigation failed", zap.Error(err))
		}
	}
}

// dropDetachedFrames detaches contexts whose iframe left the tree.
func (d *Document) dropDetachedFrames() {
	kept := d.frames[:0]
	for _, c := range d.frames {
		if attachedTo(c.element, d.root) {
			kept = append(kept, c)
			continue
		}
		c.detach()
	}
	d.frames = kept
}

func attachedTo(n, root *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// detach marks the document replaced along with every nested frame.
func (d *Document) detach() {
	d.live = false
	for _, c := range d.frames {
		c.detach()
	}
	if d.engine != nil {
		clear(d.engine.timers)
	}
}

// resolve resolves ref against the document URL.
func (d *Document) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	base, err := url.Parse(d.url)
	if err != nil || base.Opaque != "" || base.Host == "" {
		return ref
	}
	return base.ResolveReference(r).String()
}

func (d *Document) documentElement() *html.Node {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func (d *Document) childOfRoot(a atom.Atom) *html.Node {
	el := d.documentElement()
	if el == nil {
		return nil
	}
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

func (d *Document) head() *html.Node {
	return d.childOfRoot(atom.Head)
}

func (d *Document) body() *html.Node {
	return d.childOfRoot(atom.Body)
}

func (d *Document) title() string {
	t := findFirst(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Title })
	if t == nil {
		return ""
	}
	return strings.Join(strings.Fields(textContent(t)), " ")
}

func (d *Document) setTitle(title string) {
	t := findFirst(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Title })
	if t == nil {
		head := d.head()
		if head == nil {
			return
		}
		t = &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
		head.AppendChild(t)
	}
	setText(t, title)
}

// originOf returns the security origin for rawURL. about:blank and srcdoc documents
// inherit their parent's origin; data: and unparseable URLs get a fresh opaque origin.
func originOf(rawURL, parentOrigin string, opaque func() string) string {
	if rawURL == "about:blank" || rawURL == "about:srcdoc" {
		if parentOrigin != "" {
			return parentOrigin
		}
		return opaque()
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return opaque()
	}
	switch u.Scheme {
	case "http", "https":
		return u.Scheme + "://" + u.Host
	case "data":
		return opaque()
	default:
		return u.Scheme + ":"
	}
}

func errorPage(rawURL string, err error) string {
	return "<html><head><title>Navigation failed</title></head><body><h1>Navigation failed</h1><p>" +
		html.EscapeString(rawURL) + ": " + html.EscapeString(err.Error()) + "</p></body></html>"
}

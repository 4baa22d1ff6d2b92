package gojadom

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/odvcencio/webdriverd/pkg/browser"
)

// browsingContext hosts successive documents. All fields are owned by the session worker.
type browsingContext struct {
	host *host
	top  *Window

	// parent and element are nil for top-level windows.
	parent  *Document
	element *html.Node
	depth   int

	doc        *Document
	busy       bool
	state      browser.ReadyState
	navPending bool
	seq        uint64
	detached   bool
}

func (c *browsingContext) NavigationPending() bool {
	return c.navPending
}

func (c *browsingContext) Busy() bool {
	return c.busy
}

func (c *browsingContext) ReadyState() browser.ReadyState {
	return c.state
}

func (c *browsingContext) frameName() string {
	return attrOr(c.element, "name", "")
}

// eventFrame returns the Frame to report in events, or nil for the window itself.
func (c *browsingContext) eventFrame() browser.Frame {
	if c.parent == nil {
		return nil
	}
	return &Frame{browsingContext: c}
}

// navigate starts loading target. With inline set, the page is committed without going
// through the loader.
func (c *browsingContext) navigate(target string, inline *Page) error {
	if c.detached || c.top.closed {
		return browser.ErrWindowClosed
	}
	c.seq++
	seq := c.seq
	c.busy = true
	c.navPending = true
	c.state = browser.ReadyStateLoading
	c.host.emit(browser.Event{
		Kind:   browser.EventNavigateStart,
		Window: c.top,
		Frame:  c.eventFrame(),
		URL:    target,
	})

	if inline != nil {
		page := *inline
		c.host.loop.Post(func() {
			c.commit(seq, target, page, nil)
		})
		return nil
	}
	ctx := c.host.ctx
	loader := c.host.loader
	go func() {
		page, err := loader.Load(ctx, target)
		c.host.loop.Post(func() {
			c.commit(seq, target, page, err)
		})
	}()
	return nil
}

// commit installs a loaded page unless a later navigation superseded it.
func (c *browsingContext) commit(seq uint64, target string, page Page, loadErr error) {
	if seq != c.seq || c.detached || c.top.closed {
		return
	}
	if loadErr != nil {
		c.host.logger.Debug("load failed", zap.String("url", target), zap.Error(loadErr))
		page = Page{URL: target, HTML: errorPage(target, loadErr)}
	}
	if page.URL == "" {
		page.URL = target
	}
	root, err := html.Parse(strings.NewReader(page.HTML))
	if err != nil {
		root, _ = html.Parse(strings.NewReader(errorPage(target, err)))
	}

	if c.doc != nil {
		c.doc.detach()
	}
	parentOrigin := ""
	if c.parent != nil {
		parentOrigin = c.parent.origin
	}
	doc := newDocument(c, root, page.URL, originOf(page.URL, parentOrigin, c.host.opaqueOrigin))
	c.doc = doc
	if c.parent == nil {
		c.top.recordHistory(page.URL)
	}

	c.state = browser.ReadyStateInteractive
	doc.runScripts()
	if !doc.live || seq != c.seq {
		// A page script navigated or closed the window.
		return
	}
	doc.loadNewFrames()
	c.busy = false
	c.navPending = false
	c.state = browser.ReadyStateComplete
	c.host.emit(browser.Event{
		Kind:   browser.EventDocumentComplete,
		Window: c.top,
		Frame:  c.eventFrame(),
		URL:    page.URL,
	})
}

func (c *browsingContext) detach() {
	c.detached = true
	c.seq++
	c.busy = false
	c.navPending = false
	if c.doc != nil {
		c.doc.detach()
	}
}

func (c *browsingContext) document() (browser.Document, error) {
	if c.detached || c.doc == nil {
		return nil, browser.ErrNoDocument
	}
	return c.doc, nil
}

// Frame is a nested browsing context as seen from its parent document.
type Frame struct {
	*browsingContext
}

func (f *Frame) Name() string {
	return f.frameName()
}

// Document returns the frame's document, or ErrCrossOrigin when its origin differs from
// the parent document's.
func (f *Frame) Document() (browser.Document, error) {
	doc, err := f.document()
	if err != nil {
		return nil, err
	}
	if f.parent != nil && f.doc.origin != f.parent.origin {
		return nil, browser.ErrCrossOrigin
	}
	return doc, nil
}

// Window returns the frame's own window object, which exposes the document without the
// origin check.
func (f *Frame) Window() (browser.Frame, error) {
	if f.detached {
		return nil, browser.ErrWindowClosed
	}
	return &frameWindow{browsingContext: f.browsingContext}, nil
}

type frameWindow struct {
	*browsingContext
}

func (w *frameWindow) Name() string {
	return w.frameName()
}

func (w *frameWindow) Document() (browser.Document, error) {
	return w.document()
}

func (w *frameWindow) Window() (browser.Frame, error) {
	return w, nil
}

type dialogKind int

const (
	dialogAlert dialogKind = iota
	dialogConfirm
	dialogPrompt
)

type dialog struct {
	kind dialogKind
	text string
}

// Window is a top-level browsing context.
type Window struct {
	*browsingContext

	closed  bool
	dialog  *dialog
	history []string
	histPos int
	// histNav is set while a back or forward navigation is in flight.
	histNav bool
}

func (w *Window) Name() string {
	return ""
}

func (w *Window) Document() (browser.Document, error) {
	if w.closed {
		return nil, browser.ErrWindowClosed
	}
	return w.document()
}

func (w *Window) Window() (browser.Frame, error) {
	return w, nil
}

func (w *Window) URL() string {
	if w.doc == nil {
		return ""
	}
	return w.doc.url
}

func (w *Window) Title() string {
	if w.doc == nil {
		return ""
	}
	return w.doc.title()
}

// Navigate loads an absolute URL.
func (w *Window) Navigate(rawURL string) error {
	if w.closed {
		return browser.ErrWindowClosed
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("url %q is not absolute", rawURL)
	}
	w.histNav = false
	return w.navigate(rawURL, nil)
}

func (w *Window) GoBack() error {
	return w.traverse(-1)
}

func (w *Window) GoForward() error {
	return w.traverse(1)
}

func (w *Window) traverse(delta int) error {
	if w.closed {
		return browser.ErrWindowClosed
	}
	pos := w.histPos + delta
	if pos < 0 || pos >= len(w.history) {
		return browser.ErrNoHistory
	}
	w.histPos = pos
	w.histNav = true
	return w.navigate(w.history[pos], nil)
}

func (w *Window) Refresh() error {
	if w.closed {
		return browser.ErrWindowClosed
	}
	w.histNav = true
	return w.navigate(w.URL(), nil)
}

func (w *Window) recordHistory(rawURL string) {
	if w.histNav {
		w.histNav = false
		return
	}
	if len(w.history) > 0 {
		w.history = w.history[:w.histPos+1]
	}
	w.history = append(w.history, rawURL)
	w.histPos = len(w.history) - 1
}

// Close closes the window. Closing twice is a no-op.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.host.emit(browser.Event{Kind: browser.EventWindowClosing, Window: w, URL: w.URL()})
	w.closed = true
	w.dialog = nil
	w.detach()
	w.host.removeWindow(w)
	return nil
}

func (w *Window) Closed() bool {
	return w.closed
}

func (w *Window) DialogOpen() bool {
	return w.dialog != nil
}

func (w *Window) DialogText() (string, error) {
	if w.dialog == nil {
		return "", browser.ErrNoDialog
	}
	return w.dialog.text, nil
}

func (w *Window) AcceptDialog() error {
	return w.closeDialog()
}

func (w *Window) DismissDialog() error {
	return w.closeDialog()
}

func (w *Window) closeDialog() error {
	if w.dialog == nil {
		return browser.ErrNoDialog
	}
	w.dialog = nil
	return nil
}

// openDialog shows a modal dialog. A second dialog while one is open is dropped.
func (w *Window) openDialog(kind dialogKind, text string) {
	if w.closed || w.dialog != nil {
		return
	}
	w.dialog = &dialog{kind: kind, text: text}
	w.host.emit(browser.Event{Kind: browser.EventDialogOpened, Window: w, Message: text})
}

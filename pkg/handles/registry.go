// Package handles issues opaque handles for windows and DOM elements of one session.
package handles

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/odvcencio/webdriverd/pkg/browser"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
)

// maxAncestorWalk bounds ValidateElement on malformed parent chains.
const maxAncestorWalk = 1 << 16

type elementEntry struct {
	node    browser.Node
	browser string
}

// Registry maps handle strings to native references. Browser handles are never
// deduplicated; element handles are deduplicated by node equality.
type Registry struct {
	mu sync.RWMutex

	browsers     map[string]browser.Window
	browserOrder []string

	elements     map[string]elementEntry
	elementOrder []string

	newHandle func() string
}

// Option customizes a Registry.
type Option func(*Registry)

// WithHandleFunc overrides handle generation. The func must never return a value twice.
func WithHandleFunc(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newHandle = fn
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		browsers:  make(map[string]browser.Window),
		elements:  make(map[string]elementEntry),
		newHandle: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterBrowser always issues a fresh handle for win.
func (r *Registry) RegisterBrowser(win browser.Window) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle := r.newHandle()
	r.browsers[handle] = win
	r.browserOrder = append(r.browserOrder, handle)
	return handle
}

// BrowserHandleFor returns the handle already issued for win, if any.
func (r *Registry) BrowserHandleFor(win browser.Window) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, handle := range r.browserOrder {
		if r.browsers[handle] == win {
			return handle, true
		}
	}
	return "", false
}

// ResolveBrowser returns the window for handle.
func (r *Registry) ResolveBrowser(handle string) (browser.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	win, ok := r.browsers[handle]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNoSuchWindow, "no such window").
			WithContext("handle", handle)
	}
	return win, nil
}

// UnregisterBrowser removes handle. Unknown handles are ignored.
func (r *Registry) UnregisterBrowser(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.browsers[handle]; !ok {
		return
	}
	delete(r.browsers, handle)
	r.browserOrder = slices.DeleteFunc(r.browserOrder, func(h string) bool { return h == handle })
}

// BrowserHandles lists live window handles in registration order.
func (r *Registry) BrowserHandles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.browserOrder)
}

// BrowserCount returns the number of live windows.
func (r *Registry) BrowserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.browsers)
}

// RegisterElement returns the existing handle for an equal node, or mints a new one.
// The scan is linear in the number of registered elements.
func (r *Registry) RegisterElement(node browser.Node, browserHandle string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, handle := range r.elementOrder {
		if r.elements[handle].node.Equal(node) {
			return handle
		}
	}
	handle := r.newHandle()
	r.elements[handle] = elementEntry{node: node, browser: browserHandle}
	r.elementOrder = append(r.elementOrder, handle)
	return handle
}

// ResolveElement returns the node for handle and the window handle it was found under.
func (r *Registry) ResolveElement(handle string) (browser.Node, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.elements[handle]
	if !ok {
		return nil, "", noSuchElement(handle)
	}
	return entry.node, entry.browser, nil
}

// ValidateElement checks that the node still reaches a document root. A stale handle is
// evicted and every later lookup reports NoSuchElement.
func (r *Registry) ValidateElement(handle string) (browser.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.elements[handle]
	if !ok {
		return nil, noSuchElement(handle)
	}
	if attached(entry.node) {
		return entry.node, nil
	}
	r.removeElementLocked(handle)
	return nil, apperrors.New(apperrors.ErrCodeStaleElement, "element is no longer attached to the document").
		WithContext("handle", handle)
}

// UnregisterElement removes handle. Unknown handles are ignored.
func (r *Registry) UnregisterElement(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeElementLocked(handle)
}

// ClearElements drops all element handles.
func (r *Registry) ClearElements() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.elements)
	r.elementOrder = nil
}

// ElementCount returns the number of registered elements.
func (r *Registry) ElementCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.elements)
}

// Clear drops every handle.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.browsers)
	clear(r.elements)
	r.browserOrder = nil
	r.elementOrder = nil
}

func (r *Registry) removeElementLocked(handle string) {
	if _, ok := r.elements[handle]; !ok {
		return
	}
	delete(r.elements, handle)
	r.elementOrder = slices.DeleteFunc(r.elementOrder, func(h string) bool { return h == handle })
}

func attached(node browser.Node) bool {
	for i := 0; node != nil && i < maxAncestorWalk; i++ {
		if node.IsDocumentRoot() {
			return true
		}
		node = node.Parent()
	}
	return false
}

func noSuchElement(handle string) error {
	return apperrors.New(apperrors.ErrCodeNoSuchElement, "no such element").
		WithContext("handle", handle)
}

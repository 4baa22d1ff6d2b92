// Package gojadom is an in-process automation target: documents are parsed with
// golang.org/x/net/html and scripted with the goja JavaScript engine.
package gojadom

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/odvcencio/webdriverd/pkg/browser"
)

// Runtime launches windows. It is safe for concurrent use; each launched window and
// everything opened from it belongs to one session worker.
type Runtime struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	hosts  map[*host]struct{}
	closed bool
}

// NewRuntime validates cfg and creates a runtime.
func NewRuntime(cfg Config, logger *zap.Logger) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gojadom config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		cfg:    cfg.withDefaults(),
		logger: logger,
		hosts:  make(map[*host]struct{}),
	}, nil
}

// Launch opens a window and starts loading opts.InitialURL, or about:blank.
func (r *Runtime) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Window, error) {
	if opts.Loop == nil {
		return nil, errors.New("launch requires an event loop")
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, errors.New("runtime closed")
	}
	hctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &host{
		rt:     r,
		loop:   opts.Loop,
		events: opts.Events,
		loader: r.cfg.Loader,
		logger: r.logger,
		ctx:    hctx,
		cancel: cancel,
	}
	r.hosts[h] = struct{}{}
	r.mu.Unlock()

	initial := opts.InitialURL
	if initial == "" {
		initial = "about:blank"
	}
	w := h.newWindow()
	if err := w.Navigate(initial); err != nil {
		h.shutdown()
		return nil, fmt.Errorf("navigate to %s: %w", initial, err)
	}
	return w, nil
}

// Close stops in-flight loads for every launched window.
func (r *Runtime) Close() error {
	r.mu.Lock()
	hosts := make([]*host, 0, len(r.hosts))
	for h := range r.hosts {
		hosts = append(hosts, h)
	}
	r.closed = true
	r.mu.Unlock()
	for _, h := range hosts {
		h.shutdown()
	}
	return nil
}

func (r *Runtime) release(h *host) {
	r.mu.Lock()
	delete(r.hosts, h)
	r.mu.Unlock()
}

// host groups the windows of one session.
type host struct {
	rt     *Runtime
	loop   browser.EventLoop
	events browser.EventSink
	loader Loader
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// Worker-owned.
	windows []*Window
	opaque  int
}

func (h *host) emit(ev browser.Event) {
	if h.events != nil {
		h.events(ev)
	}
}

func (h *host) newWindow() *Window {
	w := &Window{}
	w.browsingContext = &browsingContext{
		host:  h,
		top:   w,
		state: browser.ReadyStateUninitialized,
	}
	h.windows = append(h.windows, w)
	return w
}

// openWindow creates a window for window.open and announces it before loading.
func (h *host) openWindow(target string) (*Window, error) {
	w := h.newWindow()
	h.emit(browser.Event{Kind: browser.EventNewWindow, Window: w, URL: target})
	if err := w.Navigate(target); err != nil {
		return nil, err
	}
	return w, nil
}

func (h *host) removeWindow(w *Window) {
	for i, other := range h.windows {
		if other == w {
			h.windows = append(h.windows[:i], h.windows[i+1:]...)
			break
		}
	}
	if len(h.windows) == 0 {
		h.shutdown()
	}
}

func (h *host) shutdown() {
	h.cancel()
	h.rt.release(h)
}

func (h *host) opaqueOrigin() string {
	h.opaque++
	return fmt.Sprintf("opaque:%d", h.opaque)
}

// Package driver holds per-session state and the command handler contract used by the
// session worker.
package driver

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/webdriverd/pkg/browser"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/handles"
	"github.com/odvcencio/webdriverd/pkg/navsync"
	"github.com/odvcencio/webdriverd/pkg/valuebridge"
)

//go:generate mockgen -package=driver -destination=mock_browser_test.go github.com/odvcencio/webdriverd/pkg/browser Window,Document

// Timeouts are the session's client-configurable waits.
type Timeouts struct {
	ImplicitWait time.Duration `json:"implicit"`
	Script       time.Duration `json:"script"`
	PageLoad     time.Duration `json:"pageLoad"`
}

// Pointer is the last known mouse state.
type Pointer struct {
	X     int64 `json:"x"`
	Y     int64 `json:"y"`
	Speed int64 `json:"speed"`
}

// Config configures a Session.
type Config struct {
	ID           string
	Loop         browser.EventLoop
	Timeouts     Timeouts
	Capabilities map[string]any
	PollInterval time.Duration
	// MaxFrameDepth bounds the frame walk while waiting for navigation.
	MaxFrameDepth int
	// PollObserver is called after every navigation poll.
	PollObserver func(settled bool)
	Metrics      *browser.Metrics
	Logger       *zap.Logger
}

// Session is the state of one automation session. Everything except the atomic flags is
// owned by the session worker.
type Session struct {
	id   string
	loop browser.EventLoop

	Registry *handles.Registry
	Bridge   *valuebridge.Bridge
	Sync     *navsync.Synchronizer

	Timeouts     Timeouts
	Pointer      Pointer
	Capabilities map[string]any

	metrics *browser.Metrics
	logger  *zap.Logger

	current   string
	expectNav bool

	invalid atomic.Bool
	quit    atomic.Bool
	windows atomic.Int64
}

// NewSession creates a session without windows. Attach the initial window before use.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", cfg.ID))
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = browser.NewMetrics()
	}
	registry := handles.NewRegistry()
	waiter := navsync.New(
		navsync.WithPollInterval(cfg.PollInterval),
		navsync.WithMaxFrameDepth(cfg.MaxFrameDepth),
		navsync.WithPollObserver(cfg.PollObserver),
		navsync.WithLogger(logger.Named("navsync")),
	)
	s := &Session{
		id:           cfg.ID,
		loop:         cfg.Loop,
		Registry:     registry,
		Bridge:       valuebridge.New(registry, valuebridge.WithMetrics(metrics), valuebridge.WithLogger(logger.Named("bridge"))),
		Sync:         waiter,
		Timeouts:     cfg.Timeouts,
		Capabilities: cfg.Capabilities,
		metrics:      metrics,
		logger:       logger,
	}
	s.Bridge.SetScriptTimeout(cfg.Timeouts.Script)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Loop returns the worker queue.
func (s *Session) Loop() browser.EventLoop {
	return s.loop
}

func (s *Session) Logger() *zap.Logger {
	return s.logger
}

func (s *Session) Metrics() *browser.Metrics {
	return s.metrics
}

// Attach registers win and makes it current when no window is.
func (s *Session) Attach(win browser.Window) string {
	if handle, ok := s.Registry.BrowserHandleFor(win); ok {
		return handle
	}
	handle := s.Registry.RegisterBrowser(win)
	s.windows.Store(int64(s.Registry.BrowserCount()))
	s.metrics.RecordWindowOpened(handle, win.URL())
	if s.current == "" {
		s.current = handle
	}
	s.logger.Debug("window attached", zap.String("window", handle))
	return handle
}

// CurrentHandle returns the current window handle, or "" after the current window closed.
func (s *Session) CurrentHandle() string {
	return s.current
}

// CurrentWindow resolves the current window.
func (s *Session) CurrentWindow() (browser.Window, error) {
	if s.current == "" {
		return nil, apperrors.New(apperrors.ErrCodeNoSuchWindow, "current window was closed")
	}
	win, err := s.Registry.ResolveBrowser(s.current)
	if err != nil {
		return nil, err
	}
	if win.Closed() {
		return nil, apperrors.New(apperrors.ErrCodeNoSuchWindow, "current window was closed")
	}
	return win, nil
}

// currentWindowOrNil is the window the synchronizer polls.
func (s *Session) currentWindowOrNil() browser.Window {
	win, err := s.CurrentWindow()
	if err != nil {
		return nil
	}
	return win
}

// CurrentDocument returns the current window's document. An open dialog blocks access.
func (s *Session) CurrentDocument() (browser.Document, error) {
	win, err := s.CurrentWindow()
	if err != nil {
		return nil, err
	}
	if win.DialogOpen() {
		text, _ := win.DialogText()
		return nil, apperrors.New(apperrors.ErrCodeModalDialogOpen, "modal dialog open").
			WithContext("text", text)
	}
	doc, err := win.Document()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNoSuchDocument, "document unavailable")
	}
	return doc, nil
}

// SwitchTo makes handle the current window.
func (s *Session) SwitchTo(handle string) error {
	win, err := s.Registry.ResolveBrowser(handle)
	if err != nil {
		return err
	}
	if win.Closed() {
		return apperrors.New(apperrors.ErrCodeNoSuchWindow, "window was closed")
	}
	if handle != s.current {
		s.current = handle
		s.Sync.Reset()
	}
	return nil
}

// ExpectNavigation makes the running command wait for navigation to settle before it
// responds, even when its table entry is not flagged.
func (s *Session) ExpectNavigation() {
	s.expectNav = true
}

// TakeNavigationExpectation reports and clears the ExpectNavigation flag.
func (s *Session) TakeNavigationExpectation() bool {
	expect := s.expectNav
	s.expectNav = false
	return expect
}

// WaitForNavigation polls the current window on the worker queue until navigation
// settles, then calls done.
func (s *Session) WaitForNavigation(done func()) {
	s.Sync.Arm()
	s.Sync.Wait(s.loop, s.currentWindowOrNil, done)
}

// HandleEvent applies a target notification. It runs on the worker.
func (s *Session) HandleEvent(ev browser.Event) {
	handle, known := "", false
	if ev.Window != nil {
		handle, known = s.Registry.BrowserHandleFor(ev.Window)
	}
	s.metrics.RecordEvent(handle, ev)

	switch ev.Kind {
	case browser.EventNavigateStart:
		if ev.TopLevel() && known && handle == s.current {
			s.Sync.NavigationStarted()
		}
	case browser.EventDocumentComplete:
		if ev.TopLevel() && known && handle == s.current {
			s.Sync.NavigationCompleted()
		}
	case browser.EventNewWindow:
		if ev.Window != nil {
			s.Attach(ev.Window)
		}
	case browser.EventWindowClosing:
		if !known {
			return
		}
		s.Registry.UnregisterBrowser(handle)
		s.windows.Store(int64(s.Registry.BrowserCount()))
		s.metrics.RecordWindowClosed(handle)
		if handle == s.current {
			s.current = ""
			s.Sync.Reset()
		}
		s.logger.Debug("window closed", zap.String("window", handle))
		if s.Registry.BrowserCount() == 0 {
			s.Invalidate("last window closed")
		}
	case browser.EventDialogOpened:
		s.logger.Debug("dialog opened", zap.String("window", handle), zap.String("text", ev.Message))
	}
}

// Invalidate marks the session unusable. The manager reaps invalid sessions.
func (s *Session) Invalidate(reason string) {
	if s.invalid.CompareAndSwap(false, true) {
		s.logger.Info("session invalidated", zap.String("reason", reason))
	}
}

// Invalid reports whether the session can no longer serve commands. Safe from any
// goroutine.
func (s *Session) Invalid() bool {
	return s.invalid.Load()
}

// RequestQuit flags the session for teardown once the current command responds.
func (s *Session) RequestQuit() {
	s.quit.Store(true)
}

// QuitRequested is safe from any goroutine.
func (s *Session) QuitRequested() bool {
	return s.quit.Load()
}

// WindowCount is safe from any goroutine.
func (s *Session) WindowCount() int {
	return int(s.windows.Load())
}

// CloseAll closes every window. Used at teardown on the worker.
func (s *Session) CloseAll() {
	for _, handle := range s.Registry.BrowserHandles() {
		win, err := s.Registry.ResolveBrowser(handle)
		if err != nil {
			continue
		}
		if err := win.Close(); err != nil {
			s.logger.Warn("close window", zap.String("window", handle), zap.Error(err))
		}
	}
	s.Registry.Clear()
	s.windows.Store(0)
	s.current = ""
}

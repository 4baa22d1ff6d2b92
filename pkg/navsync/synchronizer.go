// Package navsync decides when a window has finished navigating.
package navsync

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/webdriverd/pkg/browser"
)

//go:generate mockgen -package=navsync -destination=mock_browser_test.go github.com/odvcencio/webdriverd/pkg/browser Window,Frame,Document

const (
	DefaultPollInterval = 200 * time.Millisecond
	// DefaultMaxFrameDepth bounds the frame walk on pathological nesting.
	DefaultMaxFrameDepth = 32
)

// Synchronizer tracks one pending navigation wait. It is owned by a session worker and
// is not safe for concurrent use.
type Synchronizer struct {
	pending      bool
	navStarted   bool
	navCompleted bool
	depthWarned  bool

	interval time.Duration
	maxDepth int
	polls    int
	onPoll   func(settled bool)
	logger   *zap.Logger
}

// Option customizes a Synchronizer.
type Option func(*Synchronizer)

// WithPollInterval sets the delay between unsettled ticks.
func WithPollInterval(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithMaxFrameDepth bounds how deep nested frames are inspected.
func WithMaxFrameDepth(depth int) Option {
	return func(s *Synchronizer) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithPollObserver registers a callback invoked after every evaluated tick.
func WithPollObserver(fn func(settled bool)) Option {
	return func(s *Synchronizer) {
		s.onPoll = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an idle synchronizer.
func New(opts ...Option) *Synchronizer {
	s := &Synchronizer{
		interval: DefaultPollInterval,
		maxDepth: DefaultMaxFrameDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arm flags that the action just run may have started a navigation.
func (s *Synchronizer) Arm() {
	s.pending = true
}

// Pending reports whether a wait is outstanding.
func (s *Synchronizer) Pending() bool {
	return s.pending || s.navStarted
}

// NavigationStarted records a top-level navigation start.
func (s *Synchronizer) NavigationStarted() {
	s.navStarted = true
	s.navCompleted = false
}

// NavigationCompleted records the completion matching the last start.
func (s *Synchronizer) NavigationCompleted() {
	if s.navStarted {
		s.navCompleted = true
	}
}

// Reset drops all state, e.g. when the current window changes.
func (s *Synchronizer) Reset() {
	s.pending = false
	s.navStarted = false
	s.navCompleted = false
	s.depthWarned = false
}

// Polls returns how many ticks have been evaluated.
func (s *Synchronizer) Polls() int {
	return s.polls
}

// Interval returns the delay between unsettled ticks.
func (s *Synchronizer) Interval() time.Duration {
	return s.interval
}

// Poll runs one tick against win and reports whether it is settled. Once settled, further
// polls stay settled until the next Arm or navigation start.
func (s *Synchronizer) Poll(win browser.Window) bool {
	if !s.Pending() {
		return true
	}
	s.polls++
	settled := s.evaluate(win)
	if settled {
		s.Reset()
	}
	if s.onPoll != nil {
		s.onPoll(settled)
	}
	return settled
}

func (s *Synchronizer) evaluate(win browser.Window) bool {
	if win == nil || win.Closed() {
		return true
	}
	if win.DialogOpen() {
		s.logger.Debug("dialog open, settling")
		return true
	}
	if s.navStarted && !s.navCompleted {
		return false
	}
	return s.frameSettled(win, 0)
}

func (s *Synchronizer) frameSettled(f browser.Frame, depth int) bool {
	if f.Busy() || f.ReadyState() != browser.ReadyStateComplete {
		return false
	}
	// Frames past the limit count by their own state; their documents are not walked.
	if depth > s.maxDepth {
		if !s.depthWarned {
			s.depthWarned = true
			s.logger.Warn("frame nesting exceeds limit", zap.Int("depth", depth), zap.Int("max_depth", s.maxDepth))
		}
		return true
	}
	doc, err := f.Document()
	if errors.Is(err, browser.ErrCrossOrigin) {
		outer, werr := f.Window()
		if werr != nil {
			s.logger.Debug("cross-origin frame unreachable", zap.String("frame", f.Name()), zap.Error(werr))
			return false
		}
		return s.frameSettled(outer, depth+1)
	}
	if err != nil || doc == nil {
		return false
	}
	for _, child := range doc.Frames() {
		if child.NavigationPending() {
			return false
		}
		if !s.frameSettled(child, depth+1) {
			return false
		}
	}
	return true
}

// Wait polls win on loop until it settles, then calls done. Unsettled ticks are
// re-posted after the poll interval so target events keep flowing on the loop. There is
// no deadline; current may return nil once the window is gone, which settles the wait.
func (s *Synchronizer) Wait(loop browser.EventLoop, current func() browser.Window, done func()) {
	var tick func()
	tick = func() {
		if s.Poll(current()) {
			done()
			return
		}
		loop.PostAfter(s.interval, tick)
	}
	loop.Post(tick)
}

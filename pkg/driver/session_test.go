package driver

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/odvcencio/webdriverd/pkg/browser"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

type fakeLoop struct {
	queue  []func()
	delays []time.Duration
}

func (l *fakeLoop) Post(task func()) {
	l.queue = append(l.queue, task)
}

func (l *fakeLoop) PostAfter(delay time.Duration, task func()) {
	l.delays = append(l.delays, delay)
	l.queue = append(l.queue, task)
}

func (l *fakeLoop) drain() {
	for len(l.queue) > 0 {
		task := l.queue[0]
		l.queue = l.queue[1:]
		task()
	}
}

func newTestSession(loop browser.EventLoop) *Session {
	return NewSession(Config{ID: "s-1", Loop: loop, PollInterval: 5 * time.Millisecond})
}

func openWindow(ctrl *gomock.Controller, url string) *MockWindow {
	win := NewMockWindow(ctrl)
	win.EXPECT().URL().Return(url).AnyTimes()
	win.EXPECT().Closed().Return(false).AnyTimes()
	return win
}

func TestAttach_FirstWindowBecomesCurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSession(&fakeLoop{})

	first := s.Attach(openWindow(ctrl, "about:blank"))
	popup := openWindow(ctrl, "http://a.test/")
	second := s.Attach(popup)

	assert.NotEqual(t, first, second)
	assert.Equal(t, first, s.CurrentHandle())
	assert.Equal(t, second, s.Attach(popup), "re-attaching returns the existing handle")
	assert.Equal(t, 2, s.WindowCount())
	assert.EqualValues(t, 2, s.Metrics().WindowsOpened.Load())
}

func TestCurrentWindow_Closed(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSession(&fakeLoop{})

	win := NewMockWindow(ctrl)
	win.EXPECT().URL().Return("about:blank").AnyTimes()
	win.EXPECT().Closed().Return(true)
	s.Attach(win)

	_, err := s.CurrentWindow()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSuchWindow))
}

func TestCurrentDocument_DialogBlocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSession(&fakeLoop{})

	win := openWindow(ctrl, "about:blank")
	win.EXPECT().DialogOpen().Return(true)
	win.EXPECT().DialogText().Return("hello", nil)
	s.Attach(win)

	_, err := s.CurrentDocument()
	require.Error(t, err)
	assert.Equal(t, apperrors.StatusModalDialogOpen, apperrors.StatusCode(err))
}

func TestCurrentDocument_Unavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSession(&fakeLoop{})

	win := openWindow(ctrl, "about:blank")
	win.EXPECT().DialogOpen().Return(false)
	win.EXPECT().Document().Return(nil, browser.ErrNoDocument)
	s.Attach(win)

	_, err := s.CurrentDocument()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSuchDocument))
	assert.True(t, errors.Is(err, browser.ErrNoDocument))
}

func TestSwitchTo(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSession(&fakeLoop{})

	first := s.Attach(openWindow(ctrl, "about:blank"))
	second := s.Attach(openWindow(ctrl, "about:blank"))

	s.Sync.Arm()
	require.NoError(t, s.SwitchTo(second))
	assert.Equal(t, second, s.CurrentHandle())
	assert.False(t, s.Sync.Pending(), "switching windows drops navigation state")

	err := s.SwitchTo("missing")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSuchWindow))
	assert.Equal(t, second, s.CurrentHandle())

	require.NoError(t, s.SwitchTo(first))
	assert.Equal(t, first, s.CurrentHandle())
}

func TestHandleEvent_NavigationOnlyForCurrentTopLevel(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSession(&fakeLoop{})

	current := openWindow(ctrl, "about:blank")
	other := openWindow(ctrl, "about:blank")
	s.Attach(current)
	s.Attach(other)

	s.HandleEvent(browser.Event{Kind: browser.EventNavigateStart, Window: other})
	assert.False(t, s.Sync.Pending())

	s.HandleEvent(browser.Event{Kind: browser.EventNavigateStart, Window: current, Frame: NewMockWindow(ctrl)})
	assert.False(t, s.Sync.Pending(), "frame navigations are polled, not tracked")

	s.HandleEvent(browser.Event{Kind: browser.EventNavigateStart, Window: current})
	assert.True(t, s.Sync.Pending())
	assert.EqualValues(t, 3, s.Metrics().NavigationsStarted.Load())
}

func TestHandleEvent_NewWindowAttaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSession(&fakeLoop{})

	first := s.Attach(openWindow(ctrl, "about:blank"))
	s.HandleEvent(browser.Event{Kind: browser.EventNewWindow, Window: openWindow(ctrl, "http://a.test/")})

	assert.Len(t, s.Registry.BrowserHandles(), 2)
	assert.Equal(t, first, s.CurrentHandle())
}

func TestHandleEvent_WindowClosing(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSession(&fakeLoop{})

	primary := openWindow(ctrl, "about:blank")
	popup := openWindow(ctrl, "about:blank")
	s.Attach(primary)
	s.Attach(popup)

	s.HandleEvent(browser.Event{Kind: browser.EventWindowClosing, Window: primary})
	assert.Equal(t, "", s.CurrentHandle())
	assert.False(t, s.Invalid())
	_, err := s.CurrentWindow()
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoSuchWindow))

	s.HandleEvent(browser.Event{Kind: browser.EventWindowClosing, Window: popup})
	assert.True(t, s.Invalid(), "closing the last window invalidates the session")
	assert.Equal(t, 0, s.WindowCount())
	assert.EqualValues(t, 2, s.Metrics().WindowsClosed.Load())
}

func TestWaitForNavigation(t *testing.T) {
	ctrl := gomock.NewController(t)
	loop := &fakeLoop{}
	s := newTestSession(loop)

	win := openWindow(ctrl, "about:blank")
	win.EXPECT().DialogOpen().Return(false).AnyTimes()
	win.EXPECT().Name().Return("").AnyTimes()
	win.EXPECT().NavigationPending().Return(false).AnyTimes()
	win.EXPECT().Busy().Return(false).AnyTimes()
	win.EXPECT().ReadyState().Return(browser.ReadyStateComplete).AnyTimes()
	doc := NewMockDocument(ctrl)
	doc.EXPECT().Frames().Return(nil).AnyTimes()
	win.EXPECT().Document().Return(doc, nil).AnyTimes()
	s.Attach(win)

	s.HandleEvent(browser.Event{Kind: browser.EventNavigateStart, Window: win})

	done := false
	s.WaitForNavigation(func() { done = true })
	loop.queue[0]()
	loop.queue = loop.queue[1:]
	assert.False(t, done, "navigation started without completion")

	s.HandleEvent(browser.Event{Kind: browser.EventDocumentComplete, Window: win})
	loop.drain()
	assert.True(t, done)
	assert.Equal(t, []time.Duration{5 * time.Millisecond}, loop.delays)
}

func TestNavigationExpectation(t *testing.T) {
	s := newTestSession(&fakeLoop{})
	assert.False(t, s.TakeNavigationExpectation())
	s.ExpectNavigation()
	assert.True(t, s.TakeNavigationExpectation())
	assert.False(t, s.TakeNavigationExpectation())
}

func TestInvalidateAndQuit(t *testing.T) {
	s := newTestSession(&fakeLoop{})
	assert.False(t, s.Invalid())
	assert.False(t, s.QuitRequested())

	s.Invalidate("test")
	s.Invalidate("again")
	s.RequestQuit()
	assert.True(t, s.Invalid())
	assert.True(t, s.QuitRequested())
}

func TestTable(t *testing.T) {
	noop := func(*Session, map[string]string, wire.Params, *ResponseBuilder) {}
	entries := map[wire.CommandCode]Entry{
		wire.CommandGet:      {Handler: noop, Navigates: true},
		wire.CommandGetTitle: {Handler: noop},
		wire.CommandQuit:     {},
	}
	table := NewTable(entries)
	delete(entries, wire.CommandGet)

	entry, ok := table.Lookup(wire.CommandGet)
	require.True(t, ok, "table keeps its own copy")
	assert.True(t, entry.Navigates)

	_, ok = table.Lookup(wire.CommandQuit)
	assert.False(t, ok, "entries without handler are dropped")
	assert.Equal(t, []wire.CommandCode{wire.CommandGet, wire.CommandGetTitle}, table.Codes())

	var empty *Table
	_, ok = empty.Lookup(wire.CommandGet)
	assert.False(t, ok)
}

func TestResponseBuilder(t *testing.T) {
	t.Run("first outcome wins", func(t *testing.T) {
		b := NewResponseBuilder(&fakeLoop{})
		b.SetSuccess("ok")
		b.SetError(apperrors.New(apperrors.ErrCodeTimeout, "late"))
		assert.True(t, b.Done())
		assert.Equal(t, wire.Response{Status: 0, Value: "ok"}, b.Response())
	})

	t.Run("error maps status", func(t *testing.T) {
		b := NewResponseBuilder(&fakeLoop{})
		b.SetError(apperrors.New(apperrors.ErrCodeNoSuchElement, "no such element"))
		resp := b.Response()
		assert.Equal(t, apperrors.StatusNoSuchElement, resp.Status)
		assert.NotEmpty(t, resp.Message())
	})

	t.Run("plain errors are unknown", func(t *testing.T) {
		b := NewResponseBuilder(&fakeLoop{})
		b.SetError(errors.New("boom"))
		assert.Equal(t, apperrors.StatusUnknownError, b.Response().Status)
		assert.Equal(t, "boom", b.Response().Message())
	})

	t.Run("defer reposts", func(t *testing.T) {
		loop := &fakeLoop{}
		b := NewResponseBuilder(loop)
		b.Defer(20*time.Millisecond, func() { b.SetSuccess(1) })
		assert.True(t, b.Pending())
		assert.False(t, b.Done())

		loop.drain()
		assert.False(t, b.Pending())
		assert.True(t, b.Done())
		assert.Equal(t, []time.Duration{20 * time.Millisecond}, loop.delays)
	})
}

// Package mailbox runs a session's commands on a dedicated worker goroutine.
//
// The worker is locked to its OS thread and owns every access to the automation target.
// Callers hand a command over with Submit, which blocks until the worker has produced the
// response. Work that has to wait (navigation settling, implicit waits) is re-posted on
// the worker's own queue instead of sleeping, so target events keep flowing.
//
// wire.CommandNoop, unless the table maps it, is answered by the worker itself once the
// current window has finished loading.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/webdriverd/pkg/browser"
	"github.com/odvcencio/webdriverd/pkg/driver"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

// DefaultResponsePoll is the sleep between checks of the response slot.
const DefaultResponsePoll = time.Millisecond

// InitFunc builds the session on the worker thread. loop is the worker queue; anything
// the target needs to run on the worker must be posted there.
type InitFunc func(loop browser.EventLoop) (*driver.Session, error)

// Config configures a mailbox.
type Config struct {
	Table *driver.Table
	Init  InitFunc
	// Teardown runs on the worker during Shutdown.
	Teardown     func(*driver.Session)
	ResponsePoll time.Duration
	Logger       *zap.Logger
}

type slot struct {
	mu   sync.Mutex
	resp *wire.Response
}

func (s *slot) put(resp wire.Response) {
	s.mu.Lock()
	s.resp = &resp
	s.mu.Unlock()
}

func (s *slot) take() (wire.Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resp == nil {
		return wire.Response{}, false
	}
	resp := *s.resp
	s.resp = nil
	return resp, true
}

// Mailbox is a session's command channel.
type Mailbox struct {
	table    *driver.Table
	teardown func(*driver.Session)
	poll     time.Duration
	logger   *zap.Logger

	// admit serializes Submit; at most one command is in flight.
	admit    sync.Mutex
	commands chan wire.Command
	execute  chan struct{}
	response slot
	queue    *eventQueue

	session *driver.Session

	stop     chan struct{}
	stopOnce sync.Once
	dead     chan struct{}
	// exited is set by the worker on the normal shutdown path.
	exited bool
}

// Start spawns the worker, runs cfg.Init on it and waits until it is ready.
func Start(cfg Config) (*Mailbox, error) {
	if cfg.Init == nil {
		return nil, apperrors.New(apperrors.ErrCodeWorkerStartFailure, "mailbox requires an initializer")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	poll := cfg.ResponsePoll
	if poll <= 0 {
		poll = DefaultResponsePoll
	}
	m := &Mailbox{
		table:    cfg.Table,
		teardown: cfg.Teardown,
		poll:     poll,
		logger:   logger,
		commands: make(chan wire.Command),
		execute:  make(chan struct{}, 1),
		queue:    newEventQueue(),
		stop:     make(chan struct{}),
		dead:     make(chan struct{}),
	}

	ready := make(chan error, 1)
	go m.run(cfg.Init, ready)
	if err := <-ready; err != nil {
		<-m.dead
		return nil, apperrors.Wrap(err, apperrors.ErrCodeWorkerStartFailure, "session worker failed to start")
	}
	return m, nil
}

// Session returns the session owned by the worker. Only its concurrency-safe methods may
// be used off the worker.
func (m *Mailbox) Session() *driver.Session {
	return m.session
}

// Loop returns the worker queue.
func (m *Mailbox) Loop() browser.EventLoop {
	return m.queue
}

// Done is closed once the worker has exited for any reason.
func (m *Mailbox) Done() <-chan struct{} {
	return m.dead
}

// Submit runs cmd on the worker and returns its response. ctx bounds only the wait for
// the worker to accept the command; once accepted, Submit waits for the response.
func (m *Mailbox) Submit(ctx context.Context, cmd wire.Command) wire.Response {
	m.admit.Lock()
	defer m.admit.Unlock()

	select {
	case <-m.dead:
		return noSuchSession()
	default:
	}

	select {
	case m.commands <- cmd:
	case <-m.dead:
		return noSuchSession()
	case <-ctx.Done():
		return wire.ErrorResponse(apperrors.StatusTimeout, ctx.Err().Error())
	}

	select {
	case m.execute <- struct{}{}:
	case <-m.dead:
		return noSuchSession()
	}

	timer := time.NewTimer(m.poll)
	defer timer.Stop()
	for {
		if resp, ok := m.response.take(); ok {
			return resp
		}
		select {
		case <-m.dead:
			if resp, ok := m.response.take(); ok {
				return resp
			}
			return noSuchSession()
		case <-timer.C:
			timer.Reset(m.poll)
		}
	}
}

// Shutdown stops the worker after it finishes the task at hand and runs the teardown.
// It blocks until the worker has exited and is safe to call more than once.
func (m *Mailbox) Shutdown() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.dead
}

func noSuchSession() wire.Response {
	return wire.ErrorResponse(apperrors.StatusNoSuchSession, "session is no longer available")
}

func (m *Mailbox) run(init InitFunc, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	signaled := false
	defer func() {
		m.queue.close()
		if !signaled {
			ready <- errors.New("worker exited during initialization")
		}
		if !m.exited {
			m.logger.Error("session worker exited unexpectedly")
			if m.session != nil {
				m.session.Invalidate("worker exited")
			}
		}
		close(m.dead)
	}()

	sess, err := m.initialize(init)
	signaled = true
	if err != nil {
		m.exited = true
		ready <- err
		return
	}
	m.session = sess
	ready <- nil

	var accepted *wire.Command
	for {
		select {
		case <-m.stop:
			m.shutdown()
			return
		case cmd := <-m.commands:
			accepted = &cmd
		case <-m.execute:
			if accepted != nil {
				cmd := *accepted
				accepted = nil
				m.dispatch(cmd)
			}
		case <-m.queue.wake:
			for _, task := range m.queue.take() {
				if !m.runTask(task) {
					return
				}
			}
		}
	}
}

// runTask runs one queued task. A panic kills this session's worker only: the session is
// invalidated, its windows are released and runTask reports false.
func (m *Mailbox) runTask(task func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("worker task panic", zap.Any("panic", r), zap.Stack("stack"))
			m.session.Invalidate(fmt.Sprintf("worker task panic: %v", r))
			m.release()
			ok = false
		}
	}()
	task()
	return true
}

func (m *Mailbox) initialize(init InitFunc) (sess *driver.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Newf(apperrors.ErrCodeWorkerStartFailure, "initializer panic: %v", r)
		}
	}()
	sess, err = init(m.queue)
	if err == nil && sess == nil {
		err = errors.New("initializer returned no session")
	}
	return sess, err
}

func (m *Mailbox) shutdown() {
	m.exited = true
	m.release()
}

// release runs the teardown, if any, on the worker.
func (m *Mailbox) release() {
	if m.teardown == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("session teardown panic", zap.Any("panic", r))
		}
	}()
	m.teardown(m.session)
}

// dispatch runs one command. The response is published once the handler, any deferred
// continuations and any navigation wait have finished.
func (m *Mailbox) dispatch(cmd wire.Command) {
	logger := m.logger.With(zap.Stringer("command", cmd.Code()))
	entry, ok := m.table.Lookup(cmd.Code())
	if !ok && cmd.Code() == wire.CommandNoop {
		entry, ok = barrier, true
	}
	if !ok {
		logger.Debug("command not implemented")
		m.response.put(wire.ErrorResponse(apperrors.StatusNotImplemented, "command not implemented: "+cmd.Code().String()))
		return
	}

	resp := driver.NewResponseBuilder(m.queue)
	published := false
	publish := func() {
		published = true
		m.response.put(resp.Response())
	}
	settle := func() {
		if published {
			return
		}
		if !resp.Done() {
			if resp.Pending() {
				return
			}
			resp.SetError(apperrors.New(apperrors.ErrCodeInternal, "handler finished without a response"))
		}
		navigates := m.session.TakeNavigationExpectation() || entry.Navigates
		if navigates && resp.Response().OK() {
			published = true
			m.session.WaitForNavigation(func() {
				m.response.put(resp.Response())
			})
			return
		}
		publish()
	}
	resp.OnResume(func(next func()) {
		m.invoke(logger, resp, next)
		settle()
	})

	locator := cmd.LocatorParams()
	params := cmd.Params()
	m.invoke(logger, resp, func() {
		entry.Handler(m.session, locator, params, resp)
	})
	settle()
}

var barrier = driver.Entry{
	Handler: func(_ *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
		resp.SetSuccess(nil)
	},
	Navigates: true,
}

// invoke runs fn, turning a panic into an error response.
func (m *Mailbox) invoke(logger *zap.Logger, resp *driver.ResponseBuilder, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panic", zap.Any("panic", r), zap.Stack("stack"))
			resp.SetError(apperrors.Newf(apperrors.ErrCodeInternal, "handler panic: %v", r))
		}
	}()
	fn()
}

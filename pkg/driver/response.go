package driver

import (
	"time"

	"github.com/odvcencio/webdriverd/pkg/browser"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

// ResponseBuilder collects a handler's outcome. The first SetSuccess or SetError wins.
type ResponseBuilder struct {
	loop     browser.EventLoop
	resume   func(next func())
	resp     wire.Response
	done     bool
	deferred bool
}

// NewResponseBuilder returns a builder whose Defer schedules on loop.
func NewResponseBuilder(loop browser.EventLoop) *ResponseBuilder {
	return &ResponseBuilder{loop: loop}
}

// OnResume routes deferred continuations through fn, which must call next. The worker
// uses it to regain control after each continuation.
func (b *ResponseBuilder) OnResume(fn func(next func())) {
	b.resume = fn
}

// SetSuccess completes the response with value.
func (b *ResponseBuilder) SetSuccess(value any) {
	if b.done {
		return
	}
	b.resp = wire.Response{Status: apperrors.StatusSuccess, Value: value}
	b.done = true
}

// SetError completes the response with err's wire status and message.
func (b *ResponseBuilder) SetError(err error) {
	if b.done {
		return
	}
	b.resp = wire.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err))
	b.done = true
}

// SetStatus completes the response with an explicit status.
func (b *ResponseBuilder) SetStatus(status int, message string) {
	if b.done {
		return
	}
	b.resp = wire.ErrorResponse(status, message)
	b.done = true
}

// Defer schedules next on the worker after delay. The response stays open until a
// continuation completes it.
func (b *ResponseBuilder) Defer(delay time.Duration, next func()) {
	if b.done {
		return
	}
	b.deferred = true
	b.loop.PostAfter(delay, func() {
		b.deferred = false
		if b.resume != nil {
			b.resume(next)
			return
		}
		next()
	})
}

// Done reports whether the response is complete.
func (b *ResponseBuilder) Done() bool {
	return b.done
}

// Pending reports whether a deferred continuation is scheduled.
func (b *ResponseBuilder) Pending() bool {
	return b.deferred
}

// Response returns the completed response.
func (b *ResponseBuilder) Response() wire.Response {
	return b.resp
}

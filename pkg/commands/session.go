package commands

import (
	"errors"
	"maps"
	"time"

	"github.com/odvcencio/webdriverd/pkg/browser"
	"github.com/odvcencio/webdriverd/pkg/driver"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

// Timeout type names accepted by setTimeouts.
const (
	TimeoutImplicit = "implicit"
	TimeoutScript   = "script"
	TimeoutPageLoad = "page load"
)

func quit(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	s.RequestQuit()
	resp.SetSuccess(nil)
}

func getSessionCapabilities(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	caps := maps.Clone(s.Capabilities)
	if caps == nil {
		caps = make(map[string]any)
	}
	caps["timeouts"] = map[string]any{
		"implicit": s.Timeouts.ImplicitWait.Milliseconds(),
		"script":   s.Timeouts.Script.Milliseconds(),
		"pageLoad": s.Timeouts.PageLoad.Milliseconds(),
	}
	resp.SetSuccess(caps)
}

func executeScript(s *driver.Session, _ map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
	script, err := params.String("script")
	if err != nil {
		resp.SetError(invalidArgument(err))
		return
	}
	var args []any
	if params.Has("args") {
		if args, err = params.List("args"); err != nil {
			resp.SetError(invalidArgument(err))
			return
		}
	}
	doc, err := s.CurrentDocument()
	if err != nil {
		resp.SetError(err)
		return
	}
	value, err := s.Bridge.Run(doc, script, args, s.CurrentHandle())
	if err != nil {
		resp.SetError(err)
		return
	}
	resp.SetSuccess(value)
}

func setTimeouts(s *driver.Session, _ map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
	kind, err := params.String("type")
	if err != nil {
		resp.SetError(invalidArgument(err))
		return
	}
	d, err := params.Duration("ms")
	if err != nil {
		resp.SetError(invalidArgument(err))
		return
	}
	switch kind {
	case TimeoutImplicit:
		s.Timeouts.ImplicitWait = d
	case TimeoutScript:
		setScriptTimeout(s, d)
	case TimeoutPageLoad, "pageLoad":
		s.Timeouts.PageLoad = d
	default:
		resp.SetError(apperrors.Newf(apperrors.ErrCodeInvalidArgument, "unknown timeout type %q", kind))
		return
	}
	resp.SetSuccess(nil)
}

// timeoutSetter returns a handler that sets one timeout from the "ms" parameter.
func timeoutSetter(apply func(*driver.Session, time.Duration)) driver.Handler {
	return func(s *driver.Session, _ map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
		d, err := params.Duration("ms")
		if err != nil {
			resp.SetError(invalidArgument(err))
			return
		}
		apply(s, d)
		resp.SetSuccess(nil)
	}
}

func setImplicitWait(s *driver.Session, d time.Duration) {
	s.Timeouts.ImplicitWait = d
}

func setScriptTimeout(s *driver.Session, d time.Duration) {
	s.Timeouts.Script = d
	s.Bridge.SetScriptTimeout(d)
}

// dialog returns a handler operating on the current window's modal dialog.
func dialog(op func(browser.Window) (any, error)) driver.Handler {
	return func(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
		win, err := s.CurrentWindow()
		if err != nil {
			resp.SetError(err)
			return
		}
		value, err := op(win)
		if errors.Is(err, browser.ErrNoDialog) {
			resp.SetError(apperrors.Wrap(err, apperrors.ErrCodeNoAlertOpen, "no alert open"))
			return
		}
		if err != nil {
			resp.SetError(err)
			return
		}
		resp.SetSuccess(value)
	}
}

func acceptDialog(win browser.Window) (any, error) {
	return nil, win.AcceptDialog()
}

func dismissDialog(win browser.Window) (any, error) {
	return nil, win.DismissDialog()
}

func dialogText(win browser.Window) (any, error) {
	return win.DialogText()
}

// mouseMoveTo records the pointer position. Without a layout engine coordinates are kept
// as given, relative to the element when one is named.
func mouseMoveTo(s *driver.Session, _ map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
	if params.Has("element") {
		handle, err := params.String("element")
		if err != nil {
			resp.SetError(invalidArgument(err))
			return
		}
		if _, err := s.Registry.ValidateElement(handle); err != nil {
			resp.SetError(err)
			return
		}
	}
	var x, y int64
	var err error
	if params.Has("xoffset") {
		if x, err = params.Int("xoffset"); err != nil {
			resp.SetError(invalidArgument(err))
			return
		}
	}
	if params.Has("yoffset") {
		if y, err = params.Int("yoffset"); err != nil {
			resp.SetError(invalidArgument(err))
			return
		}
	}
	s.Pointer.X = x
	s.Pointer.Y = y
	resp.SetSuccess(nil)
}

func invalidArgument(err error) error {
	return apperrors.Wrap(err, apperrors.ErrCodeInvalidArgument, "invalid argument")
}

package commands

import (
	"errors"

	"github.com/odvcencio/webdriverd/pkg/browser"
	"github.com/odvcencio/webdriverd/pkg/driver"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

const scriptPageSource = `var root = document.documentElement;
return root ? root.outerHTML : '';`

func get(s *driver.Session, _ map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
	target, err := params.String("url")
	if err != nil {
		resp.SetError(invalidArgument(err))
		return
	}
	win, err := s.CurrentWindow()
	if err != nil {
		resp.SetError(err)
		return
	}
	if err := win.Navigate(target); err != nil {
		resp.SetError(navigationError(err, "navigate to "+target))
		return
	}
	resp.SetSuccess(nil)
}

// history returns a handler for one of the window's history operations. Moving past
// either end of the history is not an error.
func history(op func(browser.Window) error, name string) driver.Handler {
	return func(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
		win, err := s.CurrentWindow()
		if err != nil {
			resp.SetError(err)
			return
		}
		if err := op(win); err != nil && !errors.Is(err, browser.ErrNoHistory) {
			resp.SetError(navigationError(err, name))
			return
		}
		resp.SetSuccess(nil)
	}
}

func navigationError(err error, op string) error {
	if errors.Is(err, browser.ErrWindowClosed) {
		return apperrors.Wrap(err, apperrors.ErrCodeNoSuchWindow, op)
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInvalidArgument, op)
}

func getCurrentURL(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	win, err := s.CurrentWindow()
	if err != nil {
		resp.SetError(err)
		return
	}
	resp.SetSuccess(win.URL())
}

func getTitle(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	win, err := s.CurrentWindow()
	if err != nil {
		resp.SetError(err)
		return
	}
	resp.SetSuccess(win.Title())
}

func getPageSource(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	doc, err := s.CurrentDocument()
	if err != nil {
		resp.SetError(err)
		return
	}
	source, err := s.Bridge.Run(doc, scriptPageSource, nil, s.CurrentHandle())
	if err != nil {
		resp.SetError(err)
		return
	}
	resp.SetSuccess(source)
}

func getCurrentWindowHandle(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	if _, err := s.CurrentWindow(); err != nil {
		resp.SetError(err)
		return
	}
	resp.SetSuccess(s.CurrentHandle())
}

func getWindowHandles(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	resp.SetSuccess(s.Registry.BrowserHandles())
}

func switchToWindow(s *driver.Session, _ map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
	handle, err := params.String("name")
	if err != nil {
		resp.SetError(invalidArgument(err))
		return
	}
	if err := s.SwitchTo(handle); err != nil {
		resp.SetError(err)
		return
	}
	resp.SetSuccess(nil)
}

// closeWindow closes the current window. The target reports the close back through the
// session's event sink; closing the last window ends the session.
func closeWindow(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	win, err := s.CurrentWindow()
	if err != nil {
		resp.SetError(err)
		return
	}
	if err := win.Close(); err != nil {
		resp.SetError(navigationError(err, "close window"))
		return
	}
	resp.SetSuccess(nil)
}

package commands

import (
	"time"

	"github.com/odvcencio/webdriverd/pkg/driver"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

// findRetryInterval is the delay between attempts while an implicit wait is running.
const findRetryInterval = 50 * time.Millisecond

const (
	scriptText    = `return (arguments[0].innerText || '').trim();`
	scriptTagName = `return arguments[0].tagName.toLowerCase();`
	scriptEnabled = `return !arguments[0].disabled;`
	scriptClick   = `arguments[0].click();`

	scriptAttribute = `var el = arguments[0], name = arguments[1];
var value = el.getAttribute(name);
if (value === null && name in el) {
  value = el[name];
  if (typeof value === 'boolean') {
    value = value ? 'true' : null;
  }
}
return value === undefined ? null : value;`

	scriptDisplayed = `var el = arguments[0];
for (var n = el; n && n.nodeType === 1; n = n.parentElement) {
  if (n.hidden) {
    return false;
  }
  var style = getComputedStyle(n);
  if (style.display === 'none') {
    return false;
  }
  if (n === el && style.visibility === 'hidden') {
    return false;
  }
}
return true;`
)

func findElement(s *driver.Session, locator map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
	find(s, params, nil, false, resp)
}

func findElements(s *driver.Session, locator map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
	find(s, params, nil, true, resp)
}

func findChildElement(s *driver.Session, locator map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
	find(s, params, childRoot(locator), false, resp)
}

func findChildElements(s *driver.Session, locator map[string]string, params wire.Params, resp *driver.ResponseBuilder) {
	find(s, params, childRoot(locator), true, resp)
}

func childRoot(locator map[string]string) any {
	return wire.ElementRef(locator["id"])
}

// find runs the locator script, retrying through the session queue until something is
// found or the implicit wait expires.
func find(s *driver.Session, params wire.Params, root any, all bool, resp *driver.ResponseBuilder) {
	strategy, err := params.String("using")
	if err != nil {
		resp.SetError(invalidArgument(err))
		return
	}
	value, err := params.String("value")
	if err != nil {
		resp.SetError(invalidArgument(err))
		return
	}
	loc, err := compileLocator(strategy, value)
	if err != nil {
		resp.SetError(err)
		return
	}

	deadline := time.Now().Add(s.Timeouts.ImplicitWait)
	var attempt func()
	attempt = func() {
		doc, err := s.CurrentDocument()
		if err != nil {
			resp.SetError(err)
			return
		}
		result, err := s.Bridge.Run(doc, loc.script, []any{loc.query, root, all}, s.CurrentHandle())
		if err != nil {
			resp.SetError(err)
			return
		}
		found := result != nil
		if list, ok := result.([]any); ok {
			found = len(list) > 0
		}
		if found {
			resp.SetSuccess(result)
			return
		}
		if remaining := time.Until(deadline); remaining > 0 {
			resp.Defer(min(remaining, findRetryInterval), attempt)
			return
		}
		if all {
			resp.SetSuccess([]any{})
			return
		}
		resp.SetError(apperrors.Newf(apperrors.ErrCodeNoSuchElement, "unable to locate element by %s %q", strategy, value))
	}
	attempt()
}

// elementScript runs script with the element named by the locator as first argument.
func elementScript(s *driver.Session, locator map[string]string, script string, extra ...any) (any, error) {
	doc, err := s.CurrentDocument()
	if err != nil {
		return nil, err
	}
	args := append([]any{wire.ElementRef(locator["id"])}, extra...)
	return s.Bridge.Run(doc, script, args, s.CurrentHandle())
}

func elementQuery(script string) driver.Handler {
	return func(s *driver.Session, locator map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
		value, err := elementScript(s, locator, script)
		if err != nil {
			resp.SetError(err)
			return
		}
		resp.SetSuccess(value)
	}
}

func getElementAttribute(s *driver.Session, locator map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	name := locator["name"]
	if name == "" {
		resp.SetError(apperrors.New(apperrors.ErrCodeInvalidArgument, "attribute name is required"))
		return
	}
	value, err := elementScript(s, locator, scriptAttribute, name)
	if err != nil {
		resp.SetError(err)
		return
	}
	resp.SetSuccess(value)
}

func clickElement(s *driver.Session, locator map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	displayed, err := elementScript(s, locator, scriptDisplayed)
	if err != nil {
		resp.SetError(err)
		return
	}
	if displayed != true {
		resp.SetError(apperrors.New(apperrors.ErrCodeElementNotDisplayed, "element is not displayed"))
		return
	}
	enabled, err := elementScript(s, locator, scriptEnabled)
	if err != nil {
		resp.SetError(err)
		return
	}
	if enabled != true {
		resp.SetError(apperrors.New(apperrors.ErrCodeElementNotEnabled, "element is not enabled"))
		return
	}
	if _, err := elementScript(s, locator, scriptClick); err != nil {
		resp.SetError(err)
		return
	}
	resp.SetSuccess(nil)
}

func clearElementCache(s *driver.Session, _ map[string]string, _ wire.Params, resp *driver.ResponseBuilder) {
	s.Registry.ClearElements()
	resp.SetSuccess(nil)
}

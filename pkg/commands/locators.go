package commands

import (
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"

	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
)

// Locator strategies accepted by the find commands.
const (
	StrategyID              = "id"
	StrategyName            = "name"
	StrategyTagName         = "tag name"
	StrategyClassName       = "class name"
	StrategyCSSSelector     = "css selector"
	StrategyLinkText        = "link text"
	StrategyPartialLinkText = "partial link text"
	StrategyXPath           = "xpath"
)

// Finder scripts take (query, root, all); a null root searches the whole document.
const (
	cssFinder = `var root = arguments[1] || document;
return arguments[2] ? root.querySelectorAll(arguments[0]) : root.querySelector(arguments[0]);`

	xpathFinder = `var root = arguments[1] || document;
if (!arguments[2]) {
  return document.evaluate(arguments[0], root, null, 9, null).singleNodeValue;
}
var snapshot = document.evaluate(arguments[0], root, null, 7, null);
var out = [];
for (var i = 0; i < snapshot.snapshotLength; i++) {
  out.push(snapshot.snapshotItem(i));
}
return out;`

	linkTextFinder = `var root = arguments[1] || document;
var query = arguments[0].text, partial = arguments[0].partial;
var links = root.getElementsByTagName('a');
var out = [];
for (var i = 0; i < links.length; i++) {
  var text = (links[i].innerText || '').trim();
  if (partial ? text.indexOf(query) !== -1 : text === query) {
    if (!arguments[2]) {
      return links[i];
    }
    out.push(links[i]);
  }
}
return arguments[2] ? out : null;`

	byIDFinder = `if (arguments[1] || arguments[2]) {
  var root = arguments[1] || document;
  var sel = '[id="' + arguments[0].replace(/\\/g, '\\\\').replace(/"/g, '\\"') + '"]';
  return arguments[2] ? root.querySelectorAll(sel) : root.querySelector(sel);
}
return document.getElementById(arguments[0]);`
)

// locator is a compiled find request.
type locator struct {
	script string
	query  any
}

// compileLocator validates value for strategy and picks the finder script.
func compileLocator(strategy, value string) (locator, error) {
	switch strategy {
	case StrategyID:
		if value == "" {
			return locator{}, invalidSelector(strategy, value, "empty id")
		}
		return locator{script: byIDFinder, query: value}, nil
	case StrategyName:
		return cssLocator(strategy, value, `[name="`+cssString(value)+`"]`)
	case StrategyTagName:
		if value == "" || strings.ContainsAny(value, " \t\n#.[:>+~") {
			return locator{}, invalidSelector(strategy, value, "not a tag name")
		}
		return cssLocator(strategy, value, value)
	case StrategyClassName:
		if value == "" || strings.ContainsAny(value, " \t\n") {
			return locator{}, invalidSelector(strategy, value, "compound class names are not permitted")
		}
		return cssLocator(strategy, value, "."+value)
	case StrategyCSSSelector:
		return cssLocator(strategy, value, value)
	case StrategyLinkText, StrategyPartialLinkText:
		return locator{
			script: linkTextFinder,
			query:  map[string]any{"text": value, "partial": strategy == StrategyPartialLinkText},
		}, nil
	case StrategyXPath:
		if _, err := xpath.Compile(value); err != nil {
			return locator{}, invalidSelector(strategy, value, err.Error())
		}
		return locator{script: xpathFinder, query: value}, nil
	default:
		return locator{}, apperrors.Newf(apperrors.ErrCodeInvalidSelector, "unsupported locator strategy %q", strategy)
	}
}

func cssLocator(strategy, value, selector string) (locator, error) {
	if _, err := cascadia.Compile(selector); err != nil {
		return locator{}, invalidSelector(strategy, value, err.Error())
	}
	return locator{script: cssFinder, query: selector}, nil
}

func cssString(s string) string {
	quoted := strconv.Quote(s)
	return quoted[1 : len(quoted)-1]
}

func invalidSelector(strategy, value, reason string) error {
	return apperrors.Newf(apperrors.ErrCodeInvalidSelector, "invalid %s %q: %s", strategy, value, reason)
}

// Package commands is the reference handler table: a small WebDriver command set built
// on the session's handle registry and value bridge.
package commands

import (
	"github.com/odvcencio/webdriverd/pkg/browser"
	"github.com/odvcencio/webdriverd/pkg/driver"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

// Entries returns a fresh copy of the default command set, for callers that want to
// extend it before building a table.
func Entries() map[wire.CommandCode]driver.Entry {
	return map[wire.CommandCode]driver.Entry{
		wire.CommandQuit:                   {Handler: quit},
		wire.CommandGetSessionCapabilities: {Handler: getSessionCapabilities},

		wire.CommandGet:       {Handler: get, Navigates: true},
		wire.CommandGoBack:    {Handler: history(browser.Window.GoBack, "go back"), Navigates: true},
		wire.CommandGoForward: {Handler: history(browser.Window.GoForward, "go forward"), Navigates: true},
		wire.CommandRefresh:   {Handler: history(browser.Window.Refresh, "refresh"), Navigates: true},

		wire.CommandGetCurrentURL:  {Handler: getCurrentURL},
		wire.CommandGetTitle:       {Handler: getTitle},
		wire.CommandGetPageSource:  {Handler: getPageSource},
		wire.CommandExecuteScript:  {Handler: executeScript},
		wire.CommandSetTimeouts:    {Handler: setTimeouts},
		wire.CommandImplicitlyWait: {Handler: timeoutSetter(setImplicitWait)},

		wire.CommandSetScriptTimeout: {Handler: timeoutSetter(setScriptTimeout)},

		wire.CommandFindElement:         {Handler: findElement},
		wire.CommandFindElements:        {Handler: findElements},
		wire.CommandFindChildElement:    {Handler: findChildElement},
		wire.CommandFindChildElements:   {Handler: findChildElements},
		wire.CommandGetElementText:      {Handler: elementQuery(scriptText)},
		wire.CommandGetElementTagName:   {Handler: elementQuery(scriptTagName)},
		wire.CommandGetElementAttribute: {Handler: getElementAttribute},
		wire.CommandIsElementDisplayed:  {Handler: elementQuery(scriptDisplayed)},
		wire.CommandIsElementEnabled:    {Handler: elementQuery(scriptEnabled)},
		wire.CommandClickElement:        {Handler: clickElement, Navigates: true},
		wire.CommandClearElementCache:   {Handler: clearElementCache},

		wire.CommandGetCurrentWindowHandle: {Handler: getCurrentWindowHandle},
		wire.CommandGetWindowHandles:       {Handler: getWindowHandles},
		wire.CommandSwitchToWindow:         {Handler: switchToWindow},
		wire.CommandCloseWindow:            {Handler: closeWindow},

		wire.CommandAcceptAlert:  {Handler: dialog(acceptDialog)},
		wire.CommandDismissAlert: {Handler: dialog(dismissDialog)},
		wire.CommandGetAlertText: {Handler: dialog(dialogText)},
		wire.CommandMouseMoveTo:  {Handler: mouseMoveTo},
	}
}

// DefaultTable builds the default handler table.
func DefaultTable() *driver.Table {
	return driver.NewTable(Entries())
}

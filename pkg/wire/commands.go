package wire

import "fmt"

// CommandCode identifies a command in the handler table.
type CommandCode int

const (
	CommandNoop CommandCode = iota
	CommandNewSession
	CommandQuit
	CommandGetSessionCapabilities
	CommandGet
	CommandGoBack
	CommandGoForward
	CommandRefresh
	CommandGetCurrentURL
	CommandGetTitle
	CommandGetPageSource
	CommandExecuteScript
	CommandFindElement
	CommandFindElements
	CommandFindChildElement
	CommandFindChildElements
	CommandGetElementText
	CommandGetElementTagName
	CommandGetElementAttribute
	CommandIsElementDisplayed
	CommandIsElementEnabled
	CommandClickElement
	CommandGetCurrentWindowHandle
	CommandGetWindowHandles
	CommandSwitchToWindow
	CommandCloseWindow
	CommandSetTimeouts
	CommandImplicitlyWait
	CommandSetScriptTimeout
	CommandAcceptAlert
	CommandDismissAlert
	CommandGetAlertText
	CommandMouseMoveTo
	CommandClearElementCache
)

var commandNames = map[CommandCode]string{
	CommandNoop:                   "noop",
	CommandNewSession:             "newSession",
	CommandQuit:                   "quit",
	CommandGetSessionCapabilities: "getSessionCapabilities",
	CommandGet:                    "get",
	CommandGoBack:                 "goBack",
	CommandGoForward:              "goForward",
	CommandRefresh:                "refresh",
	CommandGetCurrentURL:          "getCurrentUrl",
	CommandGetTitle:               "getTitle",
	CommandGetPageSource:          "getPageSource",
	CommandExecuteScript:          "executeScript",
	CommandFindElement:            "findElement",
	CommandFindElements:           "findElements",
	CommandFindChildElement:       "findChildElement",
	CommandFindChildElements:      "findChildElements",
	CommandGetElementText:         "getElementText",
	CommandGetElementTagName:      "getElementTagName",
	CommandGetElementAttribute:    "getElementAttribute",
	CommandIsElementDisplayed:     "isElementDisplayed",
	CommandIsElementEnabled:       "isElementEnabled",
	CommandClickElement:           "clickElement",
	CommandGetCurrentWindowHandle: "getCurrentWindowHandle",
	CommandGetWindowHandles:       "getWindowHandles",
	CommandSwitchToWindow:         "switchToWindow",
	CommandCloseWindow:            "close",
	CommandSetTimeouts:            "setTimeouts",
	CommandImplicitlyWait:         "implicitlyWait",
	CommandSetScriptTimeout:       "setScriptTimeout",
	CommandAcceptAlert:            "acceptAlert",
	CommandDismissAlert:           "dismissAlert",
	CommandGetAlertText:           "getAlertText",
	CommandMouseMoveTo:            "mouseMoveTo",
	CommandClearElementCache:      "clearElementCache",
}

// String returns the command's protocol name.
func (c CommandCode) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

package browser

import (
	"fmt"
	"time"
)

// ReadyState mirrors document.readyState on a frame.
type ReadyState string

const (
	ReadyStateUninitialized ReadyState = "uninitialized"
	ReadyStateLoading       ReadyState = "loading"
	ReadyStateInteractive   ReadyState = "interactive"
	ReadyStateComplete      ReadyState = "complete"
)

// EventKind identifies a notification raised by the automation target.
type EventKind int

const (
	EventNavigateStart EventKind = iota + 1
	EventDocumentComplete
	EventNewWindow
	EventWindowClosing
	EventDialogOpened
)

func (k EventKind) String() string {
	switch k {
	case EventNavigateStart:
		return "navigate_start"
	case EventDocumentComplete:
		return "document_complete"
	case EventNewWindow:
		return "new_window"
	case EventWindowClosing:
		return "window_closing"
	case EventDialogOpened:
		return "dialog_opened"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered on the session worker through the EventSink.
type Event struct {
	Kind EventKind
	// Window is the top-level window the event belongs to.
	Window Window
	// Frame is set when the event concerns a nested frame rather than the window itself.
	Frame   Frame
	URL     string
	Message string
}

// TopLevel reports whether the event concerns the window's own document.
func (e Event) TopLevel() bool {
	return e.Frame == nil
}

// EventSink receives target notifications. It is always invoked on the session worker.
type EventSink func(Event)

// EventLoop is the worker queue owned by a session. Adapters use it to hand work
// produced on other goroutines back to the worker.
type EventLoop interface {
	Post(task func())
	PostAfter(delay time.Duration, task func())
}

// LaunchOptions configures a new automation target.
type LaunchOptions struct {
	InitialURL string
	Loop       EventLoop
	Events     EventSink
}

// ValueKind classifies a dynamic script value.
type ValueKind int

const (
	KindUnknown ValueKind = iota
	KindString
	KindInteger
	KindDouble
	KindBoolean
	KindNull
	KindArray
	KindObject
	KindElement
	KindElementCollection
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindElement:
		return "element"
	case KindElementCollection:
		return "element_collection"
	default:
		return "unknown"
	}
}

// ScriptValue is an opaque value owned by a ScriptEngine. It is only meaningful to the
// engine that produced it and must not outlive the document.
type ScriptValue any

package browser

import (
	"context"
	"time"
)

// Launcher creates automation targets. Launch runs on the session worker.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Window, error)
	Close() error
}

// Frame is anything hosting a document: a top-level window or a nested frame.
type Frame interface {
	// Name returns the frame's name attribute, or "" for top-level windows.
	Name() string
	// NavigationPending reports a navigation start without a matching completion.
	NavigationPending() bool
	Busy() bool
	ReadyState() ReadyState
	// Document returns the hosted document. Cross-origin frames return ErrCrossOrigin.
	Document() (Document, error)
	// Window returns the frame's containing window object, through which a cross-origin
	// document can still be inspected.
	Window() (Frame, error)
}

// Window is a top-level automation target.
type Window interface {
	Frame

	URL() string
	Title() string
	Navigate(url string) error
	GoBack() error
	GoForward() error
	Refresh() error
	Close() error
	Closed() bool

	DialogOpen() bool
	DialogText() (string, error)
	AcceptDialog() error
	DismissDialog() error
}

// Document is a loaded page.
type Document interface {
	URL() string
	Frames() []Frame
	Root() Node
	// Engine returns the document's script engine, or ErrEngineNotStarted when no script
	// has run in the document yet.
	Engine() (ScriptEngine, error)
	// InjectMarker inserts a no-op script element, forcing the engine to start. The
	// returned func removes the marker.
	InjectMarker() (func() error, error)
}

// Node is a native DOM node reference.
type Node interface {
	Parent() Node
	IsDocumentRoot() bool
	Equal(other Node) bool
}

// ScriptEngine is the embedded scripting facility of a document.
type ScriptEngine interface {
	// Evaluate compiles fn, a function expression, and calls it with args.
	Evaluate(fn string, args ...ScriptValue) (ScriptValue, error)
	Classify(v ScriptValue) ValueKind
	// Export converts a primitive value to string, int64, float64, bool or nil.
	Export(v ScriptValue) (any, error)
	// Import converts string, int64, float64, bool or nil to an engine value.
	Import(v any) (ScriptValue, error)
	ImportNode(n Node) (ScriptValue, error)
	ExportNode(v ScriptValue) (Node, error)
	// Window returns the document's window object.
	Window() ScriptValue
}

// TimeoutSetter is implemented by engines that can bound how long one evaluation runs.
type TimeoutSetter interface {
	SetScriptTimeout(d time.Duration)
}

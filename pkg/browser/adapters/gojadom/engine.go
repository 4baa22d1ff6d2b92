package gojadom

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/odvcencio/webdriverd/pkg/browser"
)

var errScriptTimeout = errors.New("script timeout")

// Engine is a goja runtime bound to one document.
type Engine struct {
	doc    *Document
	vm     *goja.Runtime
	logger *zap.Logger

	window   *goja.Object
	document *goja.Object

	elementProto *goja.Object
	textProto    *goja.Object

	// wrappers and nodes hold one entry per node ever wrapped, so they are bounded by
	// the document. Collections are marked on the array itself and die with it.
	compiled       map[string]goja.Callable
	wrappers       map[*html.Node]*goja.Object
	nodes          map[*goja.Object]*html.Node
	collectionMark *goja.Symbol

	timeout   time.Duration
	timers    map[int64]bool
	nextTimer int64
}

func newEngine(doc *Document, timeout time.Duration, logger *zap.Logger) *Engine {
	e := &Engine{
		doc:            doc,
		vm:             goja.New(),
		logger:         logger,
		compiled:       make(map[string]goja.Callable),
		wrappers:       make(map[*html.Node]*goja.Object),
		nodes:          make(map[*goja.Object]*html.Node),
		collectionMark: goja.NewSymbol("collection"),
		timeout:        timeout,
		timers:         make(map[int64]bool),
	}
	e.install()
	return e
}

// SetScriptTimeout bounds each Evaluate call. Zero disables the bound.
func (e *Engine) SetScriptTimeout(d time.Duration) {
	e.timeout = d
}

// Evaluate compiles fn, a function expression, and calls it with args.
func (e *Engine) Evaluate(fn string, args ...browser.ScriptValue) (browser.ScriptValue, error) {
	if !e.doc.live {
		return nil, browser.ErrDocumentReplaced
	}
	callable, err := e.compile(fn)
	if err != nil {
		return nil, err
	}
	values := make([]goja.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			values[i] = goja.Null()
			continue
		}
		v, ok := arg.(goja.Value)
		if !ok {
			return nil, fmt.Errorf("argument %d: %w", i, browser.ErrForeignValue)
		}
		values[i] = v
	}
	return e.call(callable, goja.Undefined(), values...)
}

func (e *Engine) compile(fn string) (goja.Callable, error) {
	if callable, ok := e.compiled[fn]; ok {
		return callable, nil
	}
	v, err := e.vm.RunString(fn)
	if err != nil {
		return nil, translate(err)
	}
	callable, ok := goja.AssertFunction(v)
	if !ok {
		return nil, browser.NewScriptError("script is not a function expression", nil)
	}
	e.compiled[fn] = callable
	return callable, nil
}

// call runs fn under the script timeout.
func (e *Engine) call(fn goja.Callable, this goja.Value, args ...goja.Value) (goja.Value, error) {
	defer e.interruptAfter(e.timeout)()
	res, err := fn(this, args...)
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

// interruptAfter arms the script timeout and returns the func that disarms it. Once the
// disarm func returns, a late timer can no longer interrupt the VM.
func (e *Engine) interruptAfter(d time.Duration) func() {
	if d <= 0 {
		return func() {}
	}
	var mu sync.Mutex
	armed := true
	timer := time.AfterFunc(d, func() {
		mu.Lock()
		defer mu.Unlock()
		if armed {
			e.vm.Interrupt(errScriptTimeout)
		}
	})
	return func() {
		timer.Stop()
		mu.Lock()
		armed = false
		mu.Unlock()
		e.vm.ClearInterrupt()
	}
}

// runSource executes a classic script, as found in an inline <script> element.
func (e *Engine) runSource(name, src string) error {
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return translate(err)
	}
	defer e.interruptAfter(e.timeout)()
	if _, err := e.vm.RunProgram(prog); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		msg := exc.Error()
		if v := exc.Value(); v != nil {
			msg = v.String()
		}
		return browser.NewScriptError(msg, err)
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return browser.NewScriptError("script timed out", err)
	}
	return browser.NewScriptError(err.Error(), err)
}

// Classify reports the kind of v.
func (e *Engine) Classify(v browser.ScriptValue) browser.ValueKind {
	if v == nil {
		return browser.KindNull
	}
	gv, ok := v.(goja.Value)
	if !ok {
		return browser.KindUnknown
	}
	if gv == nil || goja.IsUndefined(gv) || goja.IsNull(gv) {
		return browser.KindNull
	}
	if obj, ok := gv.(*goja.Object); ok {
		if _, ok := e.nodes[obj]; ok {
			return browser.KindElement
		}
		if e.isCollection(obj) {
			return browser.KindElementCollection
		}
		switch obj.ClassName() {
		case "Array":
			return browser.KindArray
		case "Function":
			return browser.KindUnknown
		default:
			return browser.KindObject
		}
	}
	switch gv.Export().(type) {
	case int64:
		return browser.KindInteger
	case float64:
		return browser.KindDouble
	case string:
		return browser.KindString
	case bool:
		return browser.KindBoolean
	default:
		return browser.KindUnknown
	}
}

// Export converts a primitive to its Go value. NaN and infinities export as nil.
func (e *Engine) Export(v browser.ScriptValue) (any, error) {
	switch e.Classify(v) {
	case browser.KindNull:
		return nil, nil
	case browser.KindString, browser.KindInteger, browser.KindBoolean:
		return v.(goja.Value).Export(), nil
	case browser.KindDouble:
		f := v.(goja.Value).Export().(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil
		}
		return f, nil
	default:
		return nil, fmt.Errorf("value is not a primitive")
	}
}

// Import converts a Go primitive to an engine value.
func (e *Engine) Import(v any) (browser.ScriptValue, error) {
	switch x := v.(type) {
	case nil:
		return goja.Null(), nil
	case string, bool, int64, float64:
		return e.vm.ToValue(x), nil
	case int:
		return e.vm.ToValue(int64(x)), nil
	default:
		return nil, fmt.Errorf("import %T: %w", v, browser.ErrForeignValue)
	}
}

// ImportNode returns the script wrapper for a node of this document.
func (e *Engine) ImportNode(n browser.Node) (browser.ScriptValue, error) {
	node, ok := n.(*Node)
	if !ok || node.doc != e.doc {
		return nil, fmt.Errorf("element belongs to another document: %w", browser.ErrForeignValue)
	}
	return e.wrap(node.n), nil
}

// ExportNode returns the native node behind an element value.
func (e *Engine) ExportNode(v browser.ScriptValue) (browser.Node, error) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("value is not an element")
	}
	n, ok := e.nodes[obj]
	if !ok {
		return nil, fmt.Errorf("value is not an element")
	}
	return &Node{doc: e.doc, n: n}, nil
}

// Window returns the global window object.
func (e *Engine) Window() browser.ScriptValue {
	return e.window
}

// wrap returns the cached script object for n, creating it on first use.
func (e *Engine) wrap(n *html.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if obj, ok := e.wrappers[n]; ok {
		return obj
	}
	obj := e.vm.NewObject()
	switch n.Type {
	case html.ElementNode:
		_ = obj.SetPrototype(e.elementProto)
	default:
		_ = obj.SetPrototype(e.textProto)
	}
	e.wrappers[n] = obj
	e.nodes[obj] = n
	return obj
}

// wrapCollection returns an array of element wrappers marked as a live-style collection.
func (e *Engine) wrapCollection(nodes []*html.Node) goja.Value {
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = e.wrap(n)
	}
	arr := e.vm.NewArray(items...)
	_ = arr.Set("item", func(call goja.FunctionCall) goja.Value {
		i := call.Argument(0).ToInteger()
		if i < 0 || int(i) >= len(nodes) {
			return goja.Null()
		}
		return e.wrap(nodes[i])
	})
	_ = arr.DefineDataPropertySymbol(e.collectionMark, e.vm.ToValue(true), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	return arr
}

func (e *Engine) isCollection(obj *goja.Object) bool {
	v := obj.GetSymbol(e.collectionMark)
	return v != nil && v.ToBoolean()
}

// unwrap returns the node behind v, or nil.
func (e *Engine) unwrap(v goja.Value) *html.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	if obj == e.document {
		return e.doc.root
	}
	return e.nodes[obj]
}

func (e *Engine) throw(kind, msg string) {
	ctor := e.vm.Get(kind)
	if ctor != nil {
		if obj, err := e.vm.New(ctor, e.vm.ToValue(msg)); err == nil {
			panic(obj)
		}
	}
	panic(e.vm.NewTypeError(msg))
}

// rethrow propagates an error from a nested call back into the running script.
func (e *Engine) rethrow(err error) {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		panic(exc.Value())
	}
	panic(e.vm.NewGoError(err))
}

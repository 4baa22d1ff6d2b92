// Package valuebridge runs scripts in a document and converts values between JSON and
// the document's script engine.
package valuebridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/webdriverd/pkg/browser"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/handles"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

//go:generate mockgen -package=valuebridge -destination=mock_browser_test.go github.com/odvcencio/webdriverd/pkg/browser Document,ScriptEngine

// DefaultMaxDepth bounds conversion of nested or cyclic values.
const DefaultMaxDepth = 64

// Helper scripts used for structural walks. Every walk step is an engine round-trip.
const (
	scriptLength = "(function(a) { return a.length; })"
	scriptItem   = "(function(a, i) { return typeof a.item === 'function' ? a.item(i) : a[i]; })"
	scriptKeys   = "(function(o) { var k = []; for (var p in o) { k.push(p); } return k; })"
	scriptProp   = "(function(o, k) { return o[k]; })"
	scriptArray  = "(function() { return Array.prototype.slice.call(arguments); })"
	scriptObject = "(function(keys, values) { var o = {}; for (var i = 0; i < keys.length; i++) { o[keys[i]] = values[i]; } return o; })"
)

// Bridge executes scripts on behalf of one session.
type Bridge struct {
	registry *handles.Registry
	maxDepth int
	timeout  time.Duration
	metrics  *browser.Metrics
	logger   *zap.Logger
}

// Option customizes a Bridge.
type Option func(*Bridge)

// WithMaxDepth sets the nesting limit for conversions.
func WithMaxDepth(depth int) Option {
	return func(b *Bridge) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}

// WithMetrics records script evaluations.
func WithMetrics(m *browser.Metrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a bridge resolving element handles through registry.
func New(registry *handles.Registry, opts ...Option) *Bridge {
	b := &Bridge{
		registry: registry,
		maxDepth: DefaultMaxDepth,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetScriptTimeout bounds each Execute call on engines that support it. Zero leaves the
// engine's own default in place.
func (b *Bridge) SetScriptTimeout(d time.Duration) {
	b.timeout = d
}

// ScriptTimeout returns the current script timeout.
func (b *Bridge) ScriptTimeout() time.Duration {
	return b.timeout
}

// Result is a script value together with the engine that produced it.
type Result struct {
	Engine browser.ScriptEngine
	Value  browser.ScriptValue
}

// Engine returns the document's script engine, starting it once with a marker element if
// no script has run in the document yet.
func (b *Bridge) Engine(doc browser.Document) (browser.ScriptEngine, error) {
	if doc == nil {
		return nil, apperrors.New(apperrors.ErrCodeNoSuchDocument, "no document")
	}
	engine, err := doc.Engine()
	if errors.Is(err, browser.ErrEngineNotStarted) {
		b.logger.Debug("starting script engine with marker")
		remove, injectErr := doc.InjectMarker()
		if injectErr != nil {
			return nil, scriptError(injectErr, "start script engine")
		}
		if remove != nil {
			if rmErr := remove(); rmErr != nil {
				b.logger.Warn("remove engine marker", zap.Error(rmErr))
			}
		}
		engine, err = doc.Engine()
	}
	if err != nil {
		return nil, scriptError(err, "locate script engine")
	}
	return engine, nil
}

// Execute runs script as the body of an anonymous function. args are converted from JSON;
// the document's window object is passed as the last argument.
func (b *Bridge) Execute(doc browser.Document, script string, args []any) (Result, error) {
	engine, err := b.Engine(doc)
	if err != nil {
		return Result{}, err
	}
	values := make([]browser.ScriptValue, 0, len(args)+1)
	for i, arg := range args {
		v, err := b.ToScript(engine, arg)
		if err != nil {
			return Result{}, fmt.Errorf("argument %d: %w", i, err)
		}
		values = append(values, v)
	}
	values = append(values, engine.Window())
	if setter, ok := engine.(browser.TimeoutSetter); ok && b.timeout > 0 {
		setter.SetScriptTimeout(b.timeout)
	}

	start := time.Now()
	v, err := engine.Evaluate(wrap(script), values...)
	b.metrics.RecordScript(err == nil, time.Since(start))
	if err != nil {
		return Result{}, scriptError(err, "")
	}
	return Result{Engine: engine, Value: v}, nil
}

// Run executes script and converts its result to JSON. Elements in the result are
// registered under browserHandle.
func (b *Bridge) Run(doc browser.Document, script string, args []any, browserHandle string) (any, error) {
	res, err := b.Execute(doc, script, args)
	if err != nil {
		return nil, err
	}
	return b.ToJSON(res.Engine, res.Value, browserHandle)
}

// ToJSON converts a script value to its JSON form.
func (b *Bridge) ToJSON(engine browser.ScriptEngine, v browser.ScriptValue, browserHandle string) (any, error) {
	return b.toJSON(engine, v, browserHandle, 0)
}

func (b *Bridge) toJSON(engine browser.ScriptEngine, v browser.ScriptValue, browserHandle string, depth int) (any, error) {
	if depth > b.maxDepth {
		return nil, apperrors.Newf(apperrors.ErrCodeUnexpectedScriptError,
			"result nesting exceeds %d levels", b.maxDepth)
	}
	kind := engine.Classify(v)
	switch kind {
	case browser.KindString, browser.KindInteger, browser.KindDouble, browser.KindBoolean, browser.KindNull:
		out, err := engine.Export(v)
		if err != nil {
			return nil, scriptError(err, "export "+kind.String())
		}
		return out, nil

	case browser.KindElement:
		node, err := engine.ExportNode(v)
		if err != nil {
			return nil, scriptError(err, "export element")
		}
		return wire.ElementRef(b.registry.RegisterElement(node, browserHandle)), nil

	case browser.KindArray, browser.KindElementCollection:
		n, err := b.length(engine, v)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, n)
		for i := 0; i < n; i++ {
			idx, err := engine.Import(int64(i))
			if err != nil {
				return nil, scriptError(err, "import index")
			}
			item, err := engine.Evaluate(scriptItem, v, idx)
			if err != nil {
				return nil, scriptError(err, "read item")
			}
			converted, err := b.toJSON(engine, item, browserHandle, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil

	case browser.KindObject:
		keysValue, err := engine.Evaluate(scriptKeys, v)
		if err != nil {
			return nil, scriptError(err, "enumerate keys")
		}
		keys, err := b.strings(engine, keysValue)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(keys))
		for _, key := range keys {
			k, err := engine.Import(key)
			if err != nil {
				return nil, scriptError(err, "import key")
			}
			prop, err := engine.Evaluate(scriptProp, v, k)
			if err != nil {
				return nil, scriptError(err, "read property "+key)
			}
			converted, err := b.toJSON(engine, prop, browserHandle, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil

	default:
		return nil, apperrors.New(apperrors.ErrCodeUnknownScriptResult, "unrecognized script result type")
	}
}

// ToScript converts a JSON argument to an engine value. Element references are validated
// through the registry before being passed in.
func (b *Bridge) ToScript(engine browser.ScriptEngine, arg any) (browser.ScriptValue, error) {
	return b.toScript(engine, arg, 0)
}

func (b *Bridge) toScript(engine browser.ScriptEngine, arg any, depth int) (browser.ScriptValue, error) {
	if depth > b.maxDepth {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidArgument, "argument nesting exceeds %d levels", b.maxDepth)
	}
	switch v := arg.(type) {
	case nil, string, bool, int64:
		return importValue(engine, v)
	case int:
		return importValue(engine, int64(v))
	case float64:
		return importValue(engine, v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return importValue(engine, i)
		}
		f, err := v.Float64()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidArgument, "invalid number")
		}
		return importValue(engine, f)
	case []any:
		items := make([]browser.ScriptValue, 0, len(v))
		for _, item := range v {
			sv, err := b.toScript(engine, item, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, sv)
		}
		arr, err := engine.Evaluate(scriptArray, items...)
		if err != nil {
			return nil, scriptError(err, "build array argument")
		}
		return arr, nil
	case map[string]any:
		if handle, ok := wire.AsElementRef(v); ok {
			node, err := b.registry.ValidateElement(handle)
			if err != nil {
				return nil, err
			}
			sv, err := engine.ImportNode(node)
			if err != nil {
				return nil, scriptError(err, "import element")
			}
			return sv, nil
		}
		keys := slices.Sorted(maps.Keys(v))
		keyValues := make([]any, 0, len(keys))
		values := make([]any, 0, len(keys))
		for _, k := range keys {
			keyValues = append(keyValues, k)
			values = append(values, v[k])
		}
		keyArr, err := b.toScript(engine, keyValues, depth+1)
		if err != nil {
			return nil, err
		}
		valArr, err := b.toScript(engine, values, depth+1)
		if err != nil {
			return nil, err
		}
		obj, err := engine.Evaluate(scriptObject, keyArr, valArr)
		if err != nil {
			return nil, scriptError(err, "build object argument")
		}
		return obj, nil
	default:
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidArgument, "unsupported argument type %T", arg)
	}
}

func (b *Bridge) length(engine browser.ScriptEngine, v browser.ScriptValue) (int, error) {
	lv, err := engine.Evaluate(scriptLength, v)
	if err != nil {
		return 0, scriptError(err, "read length")
	}
	raw, err := engine.Export(lv)
	if err != nil {
		return 0, scriptError(err, "export length")
	}
	switch n := raw.(type) {
	case int64:
		if n >= 0 {
			return int(n), nil
		}
	case float64:
		if n >= 0 && n == math.Trunc(n) && n <= math.MaxInt32 {
			return int(n), nil
		}
	}
	return 0, apperrors.Newf(apperrors.ErrCodeUnexpectedScriptError, "invalid length %v", raw)
}

func (b *Bridge) strings(engine browser.ScriptEngine, arr browser.ScriptValue) ([]string, error) {
	n, err := b.length(engine, arr)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx, err := engine.Import(int64(i))
		if err != nil {
			return nil, scriptError(err, "import index")
		}
		item, err := engine.Evaluate(scriptItem, arr, idx)
		if err != nil {
			return nil, scriptError(err, "read key")
		}
		raw, err := engine.Export(item)
		if err != nil {
			return nil, scriptError(err, "export key")
		}
		s, ok := raw.(string)
		if !ok {
			s = fmt.Sprint(raw)
		}
		out = append(out, s)
	}
	return out, nil
}

func importValue(engine browser.ScriptEngine, v any) (browser.ScriptValue, error) {
	sv, err := engine.Import(v)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidArgument, "convert argument")
	}
	return sv, nil
}

func wrap(script string) string {
	return "(function() { " + script + "\n})"
}

// scriptError maps engine failures to UnexpectedScriptError, keeping the engine message.
func scriptError(err error, op string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	var se *browser.ScriptError
	msg := err.Error()
	if errors.As(err, &se) {
		msg = se.Message
	}
	if op != "" {
		msg = op + ": " + msg
	}
	return apperrors.New(apperrors.ErrCodeUnexpectedScriptError, msg)
}

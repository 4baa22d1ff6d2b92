package wire

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ElementKey is the JSON property identifying an element reference.
const ElementKey = "ELEMENT"

// ElementRef builds the JSON representation of an element handle.
func ElementRef(handle string) map[string]any {
	return map[string]any{ElementKey: handle}
}

// AsElementRef reports whether v is an element reference and returns its handle.
func AsElementRef(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) != 1 {
		return "", false
	}
	handle, ok := obj[ElementKey].(string)
	return handle, ok
}

// String returns a required string parameter.
func (p Params) String(name string) (string, error) {
	raw, ok := p[name]
	if !ok {
		return "", fmt.Errorf("missing parameter %q", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", name)
	}
	return s, nil
}

// Int returns a required integral parameter.
func (p Params) Int(name string) (int64, error) {
	raw, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", name)
	}
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("parameter %q must be an integer", name)
		}
		return int64(f), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("parameter %q must be an integer", name)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("parameter %q must be an integer", name)
	}
}

// Duration returns a millisecond parameter as a duration.
func (p Params) Duration(name string) (time.Duration, error) {
	ms, err := p.Int(name)
	if err != nil {
		return 0, err
	}
	if ms < 0 {
		return 0, fmt.Errorf("parameter %q must not be negative", name)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Bool returns a required boolean parameter.
func (p Params) Bool(name string) (bool, error) {
	raw, ok := p[name]
	if !ok {
		return false, fmt.Errorf("missing parameter %q", name)
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %q must be a boolean", name)
	}
	return b, nil
}

// List returns a required array parameter.
func (p Params) List(name string) ([]any, error) {
	raw, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("missing parameter %q", name)
	}
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be an array", name)
	}
	return list, nil
}

// Has reports whether the parameter is present.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

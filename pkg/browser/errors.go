package browser

import (
	"errors"
	"fmt"
)

var (
	ErrEngineNotStarted = errors.New("script engine not started")
	ErrCrossOrigin      = errors.New("cross-origin frame access denied")
	ErrDocumentReplaced = errors.New("document replaced during call")
	ErrNoDocument       = errors.New("no document loaded")
	ErrNoDialog         = errors.New("no dialog open")
	ErrWindowClosed     = errors.New("window closed")
	ErrNoHistory        = errors.New("no history entry")
	ErrForeignValue     = errors.New("value belongs to another engine")
)

// ScriptError is an exception raised by the script engine.
type ScriptError struct {
	Message string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script error: %s", e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// NewScriptError creates a ScriptError.
func NewScriptError(message string, err error) *ScriptError {
	return &ScriptError{Message: message, Err: err}
}

// IsScriptError reports whether err carries an engine exception or a replaced document.
func IsScriptError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDocumentReplaced) {
		return true
	}
	var scriptErr *ScriptError
	return errors.As(err, &scriptErr)
}

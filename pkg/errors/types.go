package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ErrorCode represents a structured error code
type ErrorCode string

const (
	// Session errors
	ErrCodeNoSuchSession      ErrorCode = "NO_SUCH_SESSION"
	ErrCodeWorkerStartFailure ErrorCode = "WORKER_START_FAILURE"

	// Target errors
	ErrCodeNoSuchWindow    ErrorCode = "NO_SUCH_WINDOW"
	ErrCodeNoSuchFrame     ErrorCode = "NO_SUCH_FRAME"
	ErrCodeNoSuchDocument  ErrorCode = "NO_SUCH_DOCUMENT"
	ErrCodeModalDialogOpen ErrorCode = "MODAL_DIALOG_OPEN"
	ErrCodeNoAlertOpen     ErrorCode = "NO_ALERT_OPEN"

	// Element errors
	ErrCodeNoSuchElement       ErrorCode = "NO_SUCH_ELEMENT"
	ErrCodeStaleElement        ErrorCode = "STALE_ELEMENT"
	ErrCodeElementNotDisplayed ErrorCode = "ELEMENT_NOT_DISPLAYED"
	ErrCodeElementNotEnabled   ErrorCode = "ELEMENT_NOT_ENABLED"
	ErrCodeInvalidSelector     ErrorCode = "INVALID_SELECTOR"

	// Script errors
	ErrCodeUnexpectedScriptError ErrorCode = "UNEXPECTED_SCRIPT_ERROR"
	ErrCodeUnknownScriptResult   ErrorCode = "UNKNOWN_SCRIPT_RESULT"

	// Generic errors
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodeInternal        ErrorCode = "INTERNAL"
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrCodeUnknownCommand  ErrorCode = "UNKNOWN_COMMAND"
	ErrCodeNotImplemented  ErrorCode = "NOT_IMPLEMENTED"
)

// Wire status codes understood by JSON wire protocol clients.
const (
	StatusSuccess               = 0
	StatusNoSuchSession         = 6
	StatusNoSuchElement         = 7
	StatusNoSuchFrame           = 8
	StatusUnknownCommand        = 9
	StatusStaleElement          = 10
	StatusElementNotDisplayed   = 11
	StatusElementNotEnabled     = 12
	StatusUnknownError          = 13
	StatusNoSuchDocument        = 16
	StatusUnexpectedScriptError = 17
	StatusUnknownScriptResult   = 19
	StatusTimeout               = 21
	StatusNoSuchWindow          = 23
	StatusModalDialogOpen       = 26
	StatusNoAlertOpen           = 27
	StatusInvalidSelector       = 32
	StatusSessionNotCreated     = 33
	StatusNotImplemented        = 501
)

var statusByCode = map[ErrorCode]int{
	ErrCodeNoSuchSession:         StatusNoSuchSession,
	ErrCodeWorkerStartFailure:    StatusSessionNotCreated,
	ErrCodeNoSuchWindow:          StatusNoSuchWindow,
	ErrCodeNoSuchFrame:           StatusNoSuchFrame,
	ErrCodeNoSuchDocument:        StatusNoSuchDocument,
	ErrCodeModalDialogOpen:       StatusModalDialogOpen,
	ErrCodeNoAlertOpen:           StatusNoAlertOpen,
	ErrCodeNoSuchElement:         StatusNoSuchElement,
	ErrCodeStaleElement:          StatusStaleElement,
	ErrCodeElementNotDisplayed:   StatusElementNotDisplayed,
	ErrCodeElementNotEnabled:     StatusElementNotEnabled,
	ErrCodeInvalidSelector:       StatusInvalidSelector,
	ErrCodeUnexpectedScriptError: StatusUnexpectedScriptError,
	ErrCodeUnknownScriptResult:   StatusUnknownScriptResult,
	ErrCodeTimeout:               StatusTimeout,
	ErrCodeInternal:              StatusUnknownError,
	ErrCodeInvalidArgument:       StatusUnknownError,
	ErrCodeUnknownCommand:        StatusUnknownCommand,
	ErrCodeNotImplemented:        StatusNotImplemented,
}

// Error represents a structured driver error
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Context    map[string]any
	Stack      []Frame
}

// Frame represents a stack frame
type Frame struct {
	Function string
	File     string
	Line     int
}

// New creates a new structured error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
		Stack:   captureStack(2), // Skip New and caller
	}
}

// Newf creates a new structured error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Context: make(map[string]any),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with driver error context
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Context:    make(map[string]any),
		Stack:      captureStack(2),
	}
}

// WithContext adds context key-value pairs to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s: %v", k, e.Context[k]))
		}
		sb.WriteString("}")
	}

	if e.Underlying != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Underlying))
	}

	return sb.String()
}

// Unwrap returns the underlying error for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is a driver error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// StatusCode returns the wire status for the error's code.
func (e *Error) StatusCode() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return StatusUnknownError
}

// WireMessage is the text reported to clients: the message plus the underlying cause.
func (e *Error) WireMessage() string {
	if e.Underlying == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Underlying.Error()
	}
	return e.Message + ": " + e.Underlying.Error()
}

// StackTrace returns a formatted stack trace
func (e *Error) StackTrace() string {
	var sb strings.Builder

	sb.WriteString("Stack trace:\n")
	for i, frame := range e.Stack {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, frame.String()))
		sb.WriteString(fmt.Sprintf("     %s:%d\n", frame.File, frame.Line))
	}

	return sb.String()
}

// String formats a stack frame
func (f Frame) String() string {
	return f.Function
}

// captureStack captures the current call stack. Inlined frames are expanded, so the
// caller of New survives inlining.
func captureStack(skip int) []Frame {
	const maxDepth = 32
	var pcs [maxDepth]uintptr

	n := runtime.Callers(skip+1, pcs[:])
	if n == 0 {
		return nil
	}
	frames := make([]Frame, 0, n)
	it := runtime.CallersFrames(pcs[:n])
	for {
		f, more := it.Next()
		if f.Function != "" {
			frames = append(frames, Frame{
				Function: f.Function,
				File:     f.File,
				Line:     f.Line,
			})
		}
		if !more {
			break
		}
	}

	return frames
}

// Code returns a bare error carrying only code, usable as an errors.Is target.
func Code(code ErrorCode) *Error {
	return &Error{Code: code}
}

// As extracts the first driver error in err's chain.
func As(err error) (*Error, bool) {
	var driverErr *Error
	if stderrors.As(err, &driverErr) {
		return driverErr, true
	}
	return nil, false
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	driverErr, ok := As(err)
	if !ok {
		return false
	}

	return driverErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	driverErr, ok := As(err)
	if !ok {
		return ErrCodeInternal
	}

	return driverErr.Code
}

// StatusCode maps any error to a wire status. nil maps to success.
func StatusCode(err error) int {
	if err == nil {
		return StatusSuccess
	}
	driverErr, ok := As(err)
	if !ok {
		return StatusUnknownError
	}
	return driverErr.StatusCode()
}

// Message returns the client-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	driverErr, ok := As(err)
	if !ok {
		return err.Error()
	}
	return driverErr.WireMessage()
}

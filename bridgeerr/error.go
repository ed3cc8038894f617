// Package bridgeerr defines the tagged error taxonomy shared by every
// bridge component. Errors are categorised, not exception-based: callers
// switch on Category rather than matching message text.
package bridgeerr

import "fmt"

// Category tags an Error for dispatch by callers (the pipeline's
// and-then chain, sentinel's RPC handlers, the JSON-RPC error mapper).
type Category int

const (
	Decode Category = iota
	Validation
	NotInitialized
	NotInState
	NoOverwrite
	Unauthorized
	Batching
	Rpc
	Insufficient
	Nonce
)

func (c Category) String() string {
	switch c {
	case Decode:
		return "Decode"
	case Validation:
		return "Validation"
	case NotInitialized:
		return "NotInitialized"
	case NotInState:
		return "NotInState"
	case NoOverwrite:
		return "NoOverwrite"
	case Unauthorized:
		return "Unauthorized"
	case Batching:
		return "Batching"
	case Rpc:
		return "Rpc"
	case Insufficient:
		return "Insufficient"
	case Nonce:
		return "Nonce"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned from every bridge package.
type Error struct {
	Category Category
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(category Category, message string, cause error) *Error {
	return &Error{Category: category, Message: message, Cause: cause}
}

func Decodef(cause error, format string, args ...any) *Error {
	return New(Decode, fmt.Sprintf(format, args...), cause)
}

func Validationf(cause error, format string, args ...any) *Error {
	return New(Validation, fmt.Sprintf(format, args...), cause)
}

func NotInitializedf(format string, args ...any) *Error {
	return New(NotInitialized, fmt.Sprintf(format, args...), nil)
}

func NotInStatef(format string, args ...any) *Error {
	return New(NotInState, fmt.Sprintf(format, args...), nil)
}

func NoOverwritef(format string, args ...any) *Error {
	return New(NoOverwrite, fmt.Sprintf(format, args...), nil)
}

func Unauthorizedf(format string, args ...any) *Error {
	return New(Unauthorized, fmt.Sprintf(format, args...), nil)
}

func Batchingf(format string, args ...any) *Error {
	return New(Batching, fmt.Sprintf(format, args...), nil)
}

func Rpcf(cause error, format string, args ...any) *Error {
	return New(Rpc, fmt.Sprintf(format, args...), cause)
}

func Insufficientf(format string, args ...any) *Error {
	return New(Insufficient, fmt.Sprintf(format, args...), nil)
}

func Noncef(format string, args ...any) *Error {
	return New(Nonce, fmt.Sprintf(format, args...), nil)
}

// Is reports whether err is a *Error of the given category.
func Is(err error, category Category) bool {
	e, ok := err.(*Error)
	return ok && e.Category == category
}

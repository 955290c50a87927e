package mainspring

import (
	"errors"
	"fmt"
	"reflect"
)

// Process exit statuses produced by the engine itself.
const (
	ExitOK = 0
	// ExitParse is used when the command line was rejected.
	ExitParse = 1
	// ExitSoftware follows sysexits(3) EX_SOFTWARE for unexpected failures.
	ExitSoftware = 70
)

var (
	// ErrStarted is returned by Register once Run has begun.
	ErrStarted = errors.New("engine already started")
	// ErrNoRoutine is returned by Register for a routine without a body.
	ErrNoRoutine = errors.New("no routine registered")
)

// exitCoder is implemented by failures that choose their own exit status.
type exitCoder interface {
	ExitCode() int
}

// Error is an application failure carrying the exit status to use.
type Error struct {
	Code    int
	Message string
	Err     error
}

// NewError returns an application failure with the given status and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf formats an application failure. %w verbs are unwrappable.
func Errorf(code int, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Code: code, Message: err.Error(), Err: errors.Unwrap(err)}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) ExitCode() int {
	if e == nil {
		return ExitSoftware
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExitRequest asks the engine to stop with Code. It is not a failure; it is
// reported exactly like an Error.
type ExitRequest struct {
	Code    int
	Message string
}

// ExitNow returns an exit request for the routine to return (or panic with).
func ExitNow(code int, message string) error {
	return &ExitRequest{Code: code, Message: message}
}

func (e *ExitRequest) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *ExitRequest) ExitCode() int {
	if e == nil {
		return ExitSoftware
	}
	return e.Code
}

// panicError wraps a recovered panic value that was not an error.
type panicError struct {
	value any
}

func (p panicError) Error() string { return fmt.Sprint(p.value) }

// classify maps a routine failure to its exit status and the message for the
// error channel.
func classify(err error) (int, string) {
	// Methods of a nil pointer error may dereference it; that must not
	// escape the recover in invoke.
	if isNilPointer(err) {
		return ExitSoftware, fmt.Sprintf("routine failed with a nil %T", err)
	}
	var ec exitCoder
	if errors.As(err, &ec) && !isNilPointer(ec) {
		return ec.ExitCode(), err.Error()
	}
	return ExitSoftware, err.Error()
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

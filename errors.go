package catadioptre

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchField is wrapped by the error returned when no field has the
	// requested name in the instance or its embedded structs.
	ErrNoSuchField = errors.New("no such field")
	// ErrNoSuchMethod is wrapped by the error returned when no method matches
	// the requested name and arguments in the instance or its embedded structs.
	ErrNoSuchMethod = errors.New("no such method")
)

// Error is returned when a member cannot be located or accessed, or when the
// arguments of a call are unusable.
type Error struct {
	msg string
	err error
}

func newError(err error, format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...), err: err}
}

func (e *Error) Error() string {
	if e.err == nil {
		return "catadioptre: " + e.msg
	}
	return fmt.Sprintf("catadioptre: %s: %v", e.msg, e.err)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// OriginalCauseError is returned when a method invoked by Invoke or
// ExecuteInvisible panics. The cause is the value the method panicked with.
type OriginalCauseError struct {
	Method string
	cause  interface{}
}

func (e *OriginalCauseError) Error() string {
	return fmt.Sprintf("catadioptre: method %s panicked: %v", e.Method, e.cause)
}

// Cause returns the value the method panicked with, unmodified.
func (e *OriginalCauseError) Cause() interface{} {
	return e.cause
}

// Unwrap returns the panic value when it is an error, so errors.Is and
// errors.As reach it.
func (e *OriginalCauseError) Unwrap() error {
	if err, ok := e.cause.(error); ok {
		return err
	}
	return nil
}

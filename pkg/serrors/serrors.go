// Package serrors defines semantic error kinds shared across the lead finder
// and a wrapper that keeps them matchable with errors.Is and errors.As.
package serrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names a category of failure. Only values created by NewKind satisfy it.
type Kind interface {
	error
	isKind()
}

type kind string

func (k kind) Error() string { return string(k) }
func (kind) isKind()         {}

// NewKind returns a comparable sentinel for a new failure category.
func NewKind(name string) Kind { return kind(name) }

// Kinds understood by the HTTP layer and the command line.
var (
	// ErrNotFound means the business, lead or file does not exist.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrUnauthorized means the bearer token is missing or invalid.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
	// ErrForbidden means the caller may not perform the operation.
	ErrForbidden = NewKind("FORBIDDEN")
	// ErrBadRequest means the input cannot be used as given.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrConflict means the operation clashes with the current state.
	ErrConflict = NewKind("CONFLICT")
	// ErrInternal is a failure the caller cannot act on.
	ErrInternal = NewKind("INTERNAL")
	// ErrTimeout means a deadline expired or the run was interrupted.
	ErrTimeout = NewKind("TIMEOUT")
	// ErrUnavailable means a dependency such as the database or Places API is unreachable.
	ErrUnavailable = NewKind("UNAVAILABLE")
	// ErrRateLimited means an upstream quota was exhausted.
	ErrRateLimited = NewKind("RATE_LIMITED")
	// ErrInvalidConfig means the loaded configuration cannot be used.
	ErrInvalidConfig = NewKind("INVALID_CONFIG")
)

// Error attaches a Kind, and optionally a message and a cause, to a failure.
// errors.Is and errors.As match both the kind and anything in the cause chain.
//
// The text is "<msg>: <cause>", or whichever of the two is set, or the kind
// name when neither is.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With returns an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap returns an error of kind k wrapping err with a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly returns a bare error of kind k.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var parts []string
	if e.msg != "" {
		parts = append(parts, e.msg)
	}
	if e.err != nil {
		parts = append(parts, e.err.Error())
	}
	if len(parts) > 0 {
		return strings.Join(parts, ": ")
	}
	if e.kind != nil {
		return e.kind.Error()
	}

	return "unknown error"
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the kind of e or matches its cause.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}

	return (e.kind != nil && errors.Is(e.kind, target)) || (e.err != nil && errors.Is(e.err, target))
}

// As finds the first of the kind or the cause chain that matches target.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}

	return (e.kind != nil && errors.As(e.kind, target)) || (e.err != nil && errors.As(e.err, target))
}

func (e *Error) Kind() Kind { return e.kind }

// Message returns the message without the cause.
func (e *Error) Message() string { return e.msg }

func (e *Error) Cause() error { return e.err }

// KindOf returns the outermost kind in err's chain, or nil.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}

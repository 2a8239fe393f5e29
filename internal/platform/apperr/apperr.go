// Package apperr defines the request-level error taxonomy shared by the
// domain services and the request router.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

const (
	Internal Kind = iota
	Validation
	Conflict
	Unauthorized
	NotFound
	NotImplemented
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not found"
	case NotImplemented:
		return "not implemented"
	case Unavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrInternal       = &Error{Kind: Internal}
	ErrValidation     = &Error{Kind: Validation}
	ErrConflict       = &Error{Kind: Conflict}
	ErrUnauthorized   = &Error{Kind: Unauthorized}
	ErrNotFound       = &Error{Kind: NotFound}
	ErrNotImplemented = &Error{Kind: NotImplemented}
	ErrUnavailable    = &Error{Kind: Unavailable}
)

// Error carries a user-visible message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New creates an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause that stays out of the user-visible message.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf reports the kind of err, Internal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

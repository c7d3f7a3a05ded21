// Package apperr defines the error taxonomy shared by the service, storage
// and transport layers. Every failure that reaches a caller carries a Kind
// so handlers can translate it into a precise status code.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation_failed"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string // optional machine-readable reason, e.g. EVENT_FULL
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by Code when the target carries one, otherwise by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return e.Kind == t.Kind
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "conflict"}
	ErrValidation      = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
)

// Well-known conflicts raised by the participant state machine.
var (
	ErrEventFull         = &Error{Kind: KindConflict, Code: "EVENT_FULL", Message: "Event is full"}
	ErrDuplicateRequest  = &Error{Kind: KindConflict, Code: "DUPLICATE_REQUEST", Message: "You already have a request for this event"}
	ErrInvalidTransition = &Error{Kind: KindConflict, Code: "INVALID_TRANSITION", Message: "Invalid status transition"}
	ErrEventNotOpen      = &Error{Kind: KindConflict, Code: "EVENT_NOT_OPEN", Message: "Event is not open for requests"}
)

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Describe returns the caller-facing message and code for err. Anything
// outside the taxonomy is reported as a generic internal error so storage
// details never leak.
func Describe(err error) (message, code string) {
	e, ok := As(err)
	if !ok || e.Kind == KindInternal {
		return "internal server error", "INTERNAL"
	}
	code = e.Code
	if code == "" {
		code = strings.ToUpper(e.Kind.String())
	}
	return e.Message, code
}

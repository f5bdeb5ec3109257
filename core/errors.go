package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed operation for the transport layer.
type ErrorKind int

const (
	// KindInvalidArgument marks malformed or missing input. Caller's fault,
	// never retried automatically.
	KindInvalidArgument ErrorKind = iota
	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound
	// KindFailedPrecondition marks an entity that exists but is not in a
	// state that permits the operation.
	KindFailedPrecondition
	// KindInternal marks a store or infrastructure failure, opaque to the
	// caller and safe to retry.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindFailedPrecondition:
		return "failed_precondition"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Error is the single typed error crossing the operation contract. Callers
// see the kind and a field-scoped message; internal identifiers and stack
// detail stay inside the engine.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches two Errors by kind, so callers can test against sentinel
// values like core.InvalidArgumentf("") via errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func InvalidArgumentf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func FailedPreconditionf(format string, args ...any) *Error {
	return &Error{Kind: KindFailedPrecondition, Message: fmt.Sprintf(format, args...)}
}

// Internalf wraps a lower-level cause behind an opaque message. The cause is
// reachable through errors.Unwrap for logging but is not part of the message
// shown to callers.
func Internalf(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf reports the ErrorKind of err, or KindInternal for untyped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

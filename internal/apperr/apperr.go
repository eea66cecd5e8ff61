package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP layer can map it to a status code
// without inspecting message text.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindForbidden
	KindNotFound
	KindInvalidTransition
	KindConflict
	KindDependency
)

// Error carries a kind plus a human-readable message. Message is safe to
// return to the client for every kind except KindUnexpected.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps a side-effect failure (notification, flag, audit). These
// are reported alongside a successful primary result, never instead of it.
func Dependency(err error, format string, args ...any) *Error {
	return &Error{Kind: KindDependency, Message: fmt.Sprintf(format, args...), Err: err}
}

// Unexpected wraps an internal failure whose detail must not leak to clients.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: "internal error", Err: err}
}

// KindOf extracts the Kind from any error, defaulting to KindUnexpected.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// HTTPStatus maps an error to the response status used across the API.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message suitable for the JSON body. Unexpected
// errors are redacted.
func ClientMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindUnexpected {
		return ae.Message
	}
	return "internal error"
}

// Package apperr is the error taxonomy shared by services and handlers.
// Services return a typed *Error; handlers map its kind to an HTTP status
// and render the canonical {"detail": ...} envelope. Internal details
// (stack traces, driver errors) never reach clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and retry decisions.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvalidState
	KindInsufficientStock
	KindPrecondition
)

// Error carries a safe, client-visible detail message. Fields is only set
// for request-validation failures.
type Error struct {
	Kind   Kind              `json:"-"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string { return e.Detail }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Validation: malformed input the caller can correct (bad payment math,
// empty cart, malformed dates).
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// NotFound: missing product, user or sale.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict: duplicate open session, duplicate barcode or email.
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// InvalidState: an operation applied to an entity in the wrong lifecycle
// state, e.g. closing an already-closed till session.
func InvalidState(format string, args ...interface{}) *Error {
	return newf(KindInvalidState, format, args...)
}

// InsufficientStock: requested quantity exceeds current stock.
func InsufficientStock(format string, args ...interface{}) *Error {
	return newf(KindInsufficientStock, format, args...)
}

// Precondition: a required prior state is missing, e.g. checkout without
// an open till session.
func Precondition(format string, args ...interface{}) *Error {
	return newf(KindPrecondition, format, args...)
}

// Internal wraps unexpected failures behind a generic client message.
func Internal() *Error {
	return &Error{Kind: KindInternal, Detail: "internal server error"}
}

// WithFields attaches per-field validation messages.
func (e *Error) WithFields(fields map[string]string) *Error {
	e.Fields = fields
	return e
}

// KindOf extracts the Kind from any error; unknown errors are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to its HTTP status class.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState, KindInsufficientStock:
		return http.StatusConflict
	case KindPrecondition:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Payload returns the client-visible body for err. Non-taxonomy errors are
// masked behind the generic internal message.
func Payload(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae
	}
	return Internal()
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the failure categories every store
// and handler in this service agrees on.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPermission
	KindNotFound
	KindConflict
	KindLimitExceeded
	KindTimeout
	KindTransport
)

// Error is the error type returned by stores. Handlers translate it to an
// HTTP status with Status().
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

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input. No write has happened.
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// Permission reports an authorization gate denial.
func Permission(format string, args ...interface{}) *Error {
	return newf(KindPermission, format, args...)
}

// NotFound reports a referenced row that does not exist.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict reports a uniqueness collision (duplicate email, duplicate SKU).
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// LimitExceeded reports a plan limit reached on create.
func LimitExceeded(format string, args ...interface{}) *Error {
	return newf(KindLimitExceeded, format, args...)
}

// Timeout reports an exceeded database operation deadline.
func Timeout(format string, args ...interface{}) *Error {
	return newf(KindTimeout, format, args...)
}

// Transport reports an unreachable external collaborator.
func Transport(format string, args ...interface{}) *Error {
	return newf(KindTransport, format, args...)
}

// Wrap attaches a cause to the error for logging while keeping the kind.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from any error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Status maps an error to the HTTP status handlers respond with.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindLimitExceeded:
		return http.StatusUnprocessableEntity
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

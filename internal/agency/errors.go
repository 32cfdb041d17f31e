package agency

import (
	"errors"
	"fmt"

	"github.com/eleven-am/spycat/internal/orm"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindValidation
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a failure whose Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

func Invalid(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

// Unavailable wraps a dependency failure.
func Unavailable(err error, format string, args ...interface{}) *Error {
	e := newError(KindUnavailable, format, args...)
	e.Err = err
	return e
}

// KindOf reports the kind of err. Storage errors that escaped a service are
// classified by their orm sentinel.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var agencyErr *Error
	if errors.As(err, &agencyErr) {
		return agencyErr.Kind
	}

	var validationErrs orm.ValidationErrors
	if errors.As(err, &validationErrs) {
		return KindValidation
	}

	switch {
	case errors.Is(err, orm.ErrNotFound):
		return KindNotFound
	case errors.Is(err, orm.ErrDuplicateKey):
		return KindConflict
	case errors.Is(err, orm.ErrConnectionFailed), errors.Is(err, orm.ErrTimeout):
		return KindUnavailable
	}
	return KindInternal
}

// MessageOf returns the caller-facing text for err. Internal failures never
// leak their cause.
func MessageOf(err error) string {
	var agencyErr *Error
	if errors.As(err, &agencyErr) && agencyErr.Kind != KindInternal {
		return agencyErr.Error()
	}

	var validationErrs orm.ValidationErrors
	if errors.As(err, &validationErrs) {
		return validationErrs.Error()
	}

	switch KindOf(err) {
	case KindNotFound:
		return "Not found"
	case KindConflict:
		return "Conflict with existing data"
	case KindUnavailable:
		return "Service temporarily unavailable"
	}
	return "Internal server error"
}

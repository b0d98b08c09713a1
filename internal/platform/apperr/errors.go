// Package apperr defines the error kinds shared by all domain services and
// their mapping onto HTTP status codes. Services return these; handlers call
// ToHTTP and never inspect errors themselves.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Sentinel kinds. Match with errors.Is.
var (
	// ErrValidation marks malformed or out-of-range input. The caller can
	// fix the request and retry.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a reference to an entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a state transition that is impossible given the
	// current state (occupied bed, double discharge, slot clash).
	ErrConflict = errors.New("conflict")

	// ErrInvalidState marks an operation disallowed in the entity's current
	// lifecycle state (discount on a paid bill).
	ErrInvalidState = errors.New("invalid state")
)

// Error carries a kind plus a human-readable message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(ErrValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(ErrConflict, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return newError(ErrInvalidState, format, args...)
}

func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// ToHTTP converts a service error into an echo HTTPError. Unclassified
// errors surface as 500 without leaking internals.
func ToHTTP(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidState):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

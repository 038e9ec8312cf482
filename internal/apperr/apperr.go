package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
)

// Error is an operational error with a client-facing status and message.
type Error struct {
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the wrapped internal error, if any.
func (e *Error) Cause() error {
	return e.cause
}

// New creates an error with an explicit status code.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Validation marks malformed or out-of-range input (400).
func Validation(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthenticated marks a missing, invalid, or expired credential (401).
func Unauthenticated(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden marks an authenticated caller that is not the owner (403).
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// NotFound marks a resource that is absent or not owned by the caller (404).
// The two cases are deliberately indistinguishable.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// AlreadyExists marks a uniqueness conflict (400).
func AlreadyExists(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Internal wraps an unexpected failure (500).
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Server Error", cause: err}
}

// Postgres error codes surfaced to clients with a stable message.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Normalize maps an arbitrary failure to a client-facing Error. Typed errors
// pass through; driver constraint violations and missing rows get stable
// messages; everything else becomes Internal.
func Normalize(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return AlreadyExists("A record with this data already exists")
		case pqForeignKeyViolation:
			return Validation("Foreign key constraint failed")
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return NotFound("Record not found")
	}

	return Internal(err)
}

// IsInternal reports whether the normalized form of err is a 500.
func IsInternal(err error) bool {
	return Normalize(err).Status == http.StatusInternalServerError
}

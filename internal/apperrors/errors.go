// Package apperrors defines the error taxonomy for the intake backend.
// Domain errors carry an HTTP status; store failures are wrapped so no
// raw driver error ever crosses the storage boundary.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes reclassified at the boundary
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgUndefinedTable      = "42P01"
)

// ValidationError reports one or more violated validation rules.
// Details carries the full list of violations, never just the first.
type ValidationError struct {
	Message string
	Details []string
}

// NewValidationError creates a validation error with an optional rule list
func NewValidationError(message string, details ...string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, "; "))
	}
	return e.Message
}

// StatusCode implements the HTTP mapping for validation failures
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// NotFoundError reports a missing resource
type NotFoundError struct {
	Message string
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *NotFoundError {
	if message == "" {
		message = "Resource not found"
	}
	return &NotFoundError{Message: message}
}

func (e *NotFoundError) Error() string   { return e.Message }
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// ConflictError reports a duplicate or otherwise conflicting record
type ConflictError struct {
	Message string
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// UnauthorizedError reports a failed authorization check
type UnauthorizedError struct {
	Message string
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *UnauthorizedError {
	if message == "" {
		message = "Unauthorized"
	}
	return &UnauthorizedError{Message: message}
}

func (e *UnauthorizedError) Error() string   { return e.Message }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

// StoreError wraps an underlying database failure. Code holds the
// Postgres SQLSTATE when available.
type StoreError struct {
	Op    string
	Code  string
	Cause error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("database operation failed: %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("database operation failed: %s", e.Op)
}

// Unwrap returns the underlying cause
func (e *StoreError) Unwrap() error { return e.Cause }

// StatusCode reclassifies storage-native constraint violations:
// unique violation is a conflict, foreign-key and not-null violations
// are bad requests, everything else is an internal error.
func (e *StoreError) StatusCode() int {
	switch e.Code {
	case pgUniqueViolation:
		return http.StatusConflict
	case pgForeignKeyViolation, pgNotNullViolation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the category message safe to expose outside
// development mode.
func (e *StoreError) PublicMessage() string {
	switch e.Code {
	case pgUniqueViolation:
		return "Duplicate entry"
	case pgForeignKeyViolation:
		return "Referenced record not found"
	case pgNotNullViolation:
		return "Required field missing"
	case pgUndefinedTable:
		return "Database table not found"
	default:
		return "Database operation failed"
	}
}

// WrapStore wraps a driver error into a StoreError, capturing the
// SQLSTATE when the cause is a Postgres error. Domain errors pass
// through untouched so repositories can surface them directly.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}

	var vErr *ValidationError
	var nfErr *NotFoundError
	var cErr *ConflictError
	if errors.As(err, &vErr) || errors.As(err, &nfErr) || errors.As(err, &cErr) {
		return err
	}

	se := &StoreError{Op: op, Cause: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		se.Code = pgErr.Code
	}
	return se
}

// StatusCode returns the HTTP status for any error in the taxonomy,
// defaulting to 500 for unclassified errors.
func StatusCode(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

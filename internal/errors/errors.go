// Package errors provides the error taxonomy of the period store.
// Every structural failure is an *AppError so callers, the event stream and
// the HTTP surface all see the same stable code.
package errors

import (
	stderrors "errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so errors.Is(err, ErrUnknownPeriod)
// holds for wrapped copies too.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// CodeOf returns the code of err if it is an AppError, or ErrInternal's code.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}

// General errors.
var (
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound     = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternal     = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Period errors. These are structural: returned before any state is mutated.
var (
	ErrUnknownPeriod       = &AppError{Code: "UNKNOWN_PERIOD", Message: "Period is not in the index", StatusCode: http.StatusNotFound}
	ErrAlreadyExists       = &AppError{Code: "ALREADY_EXISTS", Message: "Period already exists", StatusCode: http.StatusConflict}
	ErrInvalidTransition   = &AppError{Code: "INVALID_TRANSITION", Message: "Period state does not allow this transition", StatusCode: http.StatusConflict}
	ErrUnlockLimitExceeded = &AppError{Code: "UNLOCK_LIMIT_EXCEEDED", Message: "Too many periods are unlocked", StatusCode: http.StatusConflict}
	ErrFutureLimitExceeded = &AppError{Code: "FUTURE_LIMIT_EXCEEDED", Message: "Period is too far in the future", StatusCode: http.StatusUnprocessableEntity}
	ErrNoCloneSource       = &AppError{Code: "NO_CLONE_SOURCE", Message: "No period is available to clone from", StatusCode: http.StatusUnprocessableEntity}
	ErrNotEditable         = &AppError{Code: "NOT_EDITABLE", Message: "Period is archived; unlock it before editing", StatusCode: http.StatusForbidden}
)

// Storage errors.
var (
	ErrMigrationFailure   = &AppError{Code: "MIGRATION_FAILURE", Message: "Legacy data migration failed and was rolled back", StatusCode: http.StatusInternalServerError}
	ErrPersistenceFailure = &AppError{Code: "PERSISTENCE_FAILURE", Message: "Failed to persist data", StatusCode: http.StatusInternalServerError}
	ErrIntegrityWarning   = &AppError{Code: "INTEGRITY_WARNING", Message: "Period is missing data buckets", StatusCode: http.StatusOK}
)

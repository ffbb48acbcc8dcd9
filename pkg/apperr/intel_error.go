package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"intel_server/core/domain"
)

// Error codes
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidInput     = "INVALID_INPUT"

	CodeNotFound = "NOT_FOUND"
	CodeConflict = "CONFLICT"

	CodeDatabaseError = "DATABASE_ERROR"
	CodeCacheError    = "CACHE_ERROR"

	CodeInternalError = "INTERNAL_ERROR"
	CodeInvalidScore  = "INVALID_SCORE"
)

// AppError represents a structured application error.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// HTTPStatus returns the HTTP status code.
func (e *AppError) HTTPStatus() int {
	return e.Status
}

// Constructor functions

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func Wrap(err error, code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

func BadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

func InvalidInput(field, reason string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: fmt.Sprintf("invalid input for '%s': %s", field, reason),
		Status:  http.StatusBadRequest,
		Details: map[string]any{"field": field},
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: http.StatusConflict}
}

func DatabaseError(err error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: "database operation failed",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Internal(message string) *AppError {
	if message == "" {
		message = "an unexpected error occurred"
	}
	return &AppError{Code: CodeInternalError, Message: message, Status: http.StatusInternalServerError}
}

// FromDomain maps domain sentinel errors to AppErrors. Unrecognized
// errors map to an internal error: an out-of-range score or any other
// calculator failure is a defect, not a data-quality issue.
func FromDomain(err error) *AppError {
	switch {
	case errors.Is(err, domain.ErrEntityNotFound):
		return Wrap(err, CodeNotFound, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidScore):
		return Wrap(err, CodeInvalidScore, err.Error(), http.StatusInternalServerError)
	default:
		return Wrap(err, CodeInternalError, "an unexpected error occurred", http.StatusInternalServerError)
	}
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

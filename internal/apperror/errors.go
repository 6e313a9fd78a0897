package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindStorage      Kind = "storage"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Kind    Kind         `json:"kind,omitempty"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches any AppError of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found error regardless of its message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Field returns the error attached to field, if any.
func (e *AppError) Field(name string) (FieldError, bool) {
	for _, fe := range e.Errors {
		if fe.Field == name {
			return fe, true
		}
	}
	return FieldError{}, false
}

var (
	ErrValidation   = &AppError{Kind: KindValidation, Code: http.StatusUnprocessableEntity, Message: "Validation failed"}
	ErrStorage      = &AppError{Kind: KindStorage, Code: http.StatusInternalServerError, Message: "Storage error"}
	ErrNotFound     = &AppError{Kind: KindNotFound, Code: http.StatusNotFound, Message: "Resource not found"}
	ErrConflict     = &AppError{Kind: KindConflict, Code: http.StatusConflict, Message: "Conflict"}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized, Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden    = &AppError{Kind: KindForbidden, Code: http.StatusForbidden, Message: "Forbidden"}
)

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewStorageError wraps a database failure. The message is shown to the
// cashier together with the underlying driver message.
func NewStorageError(op string, err error) *AppError {
	return &AppError{
		Kind:    KindStorage,
		Code:    http.StatusInternalServerError,
		Message: op,
		cause:   err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Code: http.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: http.StatusForbidden, Message: message}
}

// Storagef wraps err as a storage error with a formatted operation name.
func Storagef(err error, format string, args ...any) *AppError {
	return NewStorageError(fmt.Sprintf(format, args...), err)
}

// From converts an error to AppError if possible
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Kind:    KindStorage,
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}

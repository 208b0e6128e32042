package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes an application error. Handlers map codes to HTTP statuses and the
// metrics classifier uses them as labels, so values must stay stable.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "not_found"
	ErrCodeConflict     ErrorCode = "conflict"
	ErrCodeValidation   ErrorCode = "validation"
	ErrCodeForeignKey   ErrorCode = "foreign_key"
	ErrCodeInternal     ErrorCode = "internal"
	ErrCodeTimeout      ErrorCode = "timeout"
	ErrCodeCanceled     ErrorCode = "canceled"
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeForbidden covers role mismatches and restricted-query rejections.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeUnavailable indicates a dependency (session store, verification endpoint) failed.
	ErrCodeUnavailable ErrorCode = "unavailable"
)

// AppError is a coded error with an optional cause and offending field.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the request field that failed validation, if any.
	Field string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NotFoundf creates a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf(format, args...))
}

// ValidationField creates a Validation error tied to a request field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Forbidden creates a Forbidden error.
func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

// Wrap attaches a code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }
func IsConflict(err error) bool { return HasCode(err, ErrCodeConflict) }
func IsValidation(err error) bool { return HasCode(err, ErrCodeValidation) }
func IsForbidden(err error) bool { return HasCode(err, ErrCodeForbidden) }

// GetCode returns the code of the first AppError in err's chain, or "".
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the offending field of the first AppError in err's chain, or "".
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

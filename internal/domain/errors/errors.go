package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is a custom error type for application errors
type AppError struct {
	Code       string
	Message    string
	StatusCode int // Same rule as HTTP status codes
	Err        error
	Details    map[string]interface{}
}

// Error codes surfaced to callers
const (
	CodeMissingField         = "MISSING_FIELD"
	CodeNotFound             = "NOT_FOUND"
	CodeExpired              = "OTP_EXPIRED"
	CodeCodeMismatch         = "CODE_MISMATCH"
	CodeOtpNotVerified       = "OTP_NOT_VERIFIED"
	CodePurposeDisabled      = "PURPOSE_DISABLED"
	CodeUnknownOperationType = "UNKNOWN_OPERATION_TYPE"
	CodeValidation           = "VALIDATION_ERROR"
	CodeAuthentication       = "AUTHENTICATION_ERROR"
	CodeInternal             = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Matching is done on Code only.
var (
	ErrMissingField         = AppError{Code: CodeMissingField}
	ErrNotFound             = AppError{Code: CodeNotFound}
	ErrExpired              = AppError{Code: CodeExpired}
	ErrCodeMismatch         = AppError{Code: CodeCodeMismatch}
	ErrOtpNotVerified       = AppError{Code: CodeOtpNotVerified}
	ErrPurposeDisabled      = AppError{Code: CodePurposeDisabled}
	ErrUnknownOperationType = AppError{Code: CodeUnknownOperationType}
	ErrValidation           = AppError{Code: CodeValidation}
	ErrAuthentication       = AppError{Code: CodeAuthentication}
	ErrInternal             = AppError{Code: CodeInternal}
)

// Error returns a string representation of the error
func (e AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is implements the errors.Is interface
func (e AppError) Is(target error) bool {
	if target, ok := target.(AppError); ok {
		return target.Code == e.Code
	}
	return false
}

// Unwrap returns the underlying error
func (e AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error
func (e AppError) WithDetail(key string, value interface{}) AppError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// NewMissingFieldError reports a required field that was absent or zero
func NewMissingFieldError(field string) AppError {
	return AppError{
		Code:       CodeMissingField,
		Message:    fmt.Sprintf("%s is required", field),
		StatusCode: http.StatusBadRequest,
		Details:    map[string]interface{}{"field": field},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) AppError {
	return AppError{
		Code:       CodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewExpiredError(message string) AppError {
	return AppError{
		Code:       CodeExpired,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewCodeMismatchError(message string) AppError {
	return AppError{
		Code:       CodeCodeMismatch,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewOtpNotVerifiedError(message string) AppError {
	return AppError{
		Code:       CodeOtpNotVerified,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewPurposeDisabledError(purpose string) AppError {
	return AppError{
		Code:       CodePurposeDisabled,
		Message:    fmt.Sprintf("otp purpose %q is disabled", purpose),
		StatusCode: http.StatusBadRequest,
		Details:    map[string]interface{}{"purpose": purpose},
	}
}

func NewUnknownOperationTypeError(opType string) AppError {
	return AppError{
		Code:       CodeUnknownOperationType,
		Message:    fmt.Sprintf("unknown operation type %q", opType),
		StatusCode: http.StatusBadRequest,
		Details:    map[string]interface{}{"type": opType},
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) AppError {
	return AppError{
		Code:       CodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) AppError {
	return AppError{
		Code:       CodeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) AppError {
	return AppError{
		Code:       CodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// AsAppError converts any error into an AppError, wrapping unknown errors as internal
func AsAppError(err error) AppError {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("an unexpected error occurred", err)
}

package clamav

import (
	"errors"
	"fmt"
)

// Error codes for machine-readable error classification.
const (
	CodeConnection         = "connection_error"
	CodeTimeout            = "timeout"
	CodeValidation         = "validation_error"
	CodeService            = "service_error"
	CodeServiceUnavailable = "service_unavailable"
	CodeFileTooLarge       = "file_too_large"
	CodeBadRequest         = "bad_request"
	CodeInvalidChunkSize   = "invalid_chunk_size"
)

// Sentinel kinds for use with errors.Is. A *Error matches a sentinel when
// their codes are equal, regardless of message or cause.
var (
	ErrConnection         = &Error{Code: CodeConnection, Message: "connection error"}
	ErrTimeout            = &Error{Code: CodeTimeout, Message: "timeout"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrService            = &Error{Code: CodeService, Message: "service error"}
	ErrServiceUnavailable = &Error{Code: CodeServiceUnavailable, Message: "service unavailable"}
	ErrFileTooLarge       = &Error{Code: CodeFileTooLarge, Message: "file too large"}
	ErrBadRequest         = &Error{Code: CodeBadRequest, Message: "bad request"}
	ErrInvalidChunkSize   = &Error{Code: CodeInvalidChunkSize, Message: "invalid chunk size"}
)

// Error is the base error type for all SDK errors.
type Error struct {
	// Code is a machine-readable error code.
	Code string
	// Message is a human-readable error description.
	Message string
	// StatusCode is the HTTP status code or the HTTP equivalent of a gRPC status code.
	StatusCode int
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// NewConnectionError creates an error indicating a connection failure.
func NewConnectionError(msg string, cause error) *Error {
	return &Error{
		Code:    CodeConnection,
		Message: msg,
		Cause:   cause,
	}
}

// NewTimeoutError creates an error indicating a timeout.
func NewTimeoutError(msg string, cause error) *Error {
	return &Error{
		Code:    CodeTimeout,
		Message: msg,
		Cause:   cause,
	}
}

// NewValidationError creates an error indicating invalid local input.
func NewValidationError(msg string, cause error) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: msg,
		Cause:   cause,
	}
}

// NewServiceError creates an error for a service failure that has no more
// specific classification. It carries the raw status code for diagnostics.
func NewServiceError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Code:       CodeService,
		Message:    msg,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewServiceUnavailableError creates an error indicating the ClamAV daemon
// behind the API is not available.
func NewServiceUnavailableError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Code:       CodeServiceUnavailable,
		Message:    msg,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewFileTooLargeError creates an error indicating the payload exceeds the
// server's configured size limit.
func NewFileTooLargeError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Code:       CodeFileTooLarge,
		Message:    msg,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewBadRequestError creates an error indicating the server rejected the
// request as malformed.
func NewBadRequestError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Code:       CodeBadRequest,
		Message:    msg,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewInvalidChunkSizeError creates an error for a non-positive chunk size.
func NewInvalidChunkSizeError(size int) *Error {
	return &Error{
		Code:    CodeInvalidChunkSize,
		Message: fmt.Sprintf("chunk size must be greater than 0, got %d", size),
	}
}

func hasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsConnectionError reports whether err is or wraps a connection error.
func IsConnectionError(err error) bool {
	return hasCode(err, CodeConnection)
}

// IsTimeoutError reports whether err is or wraps a timeout error.
func IsTimeoutError(err error) bool {
	return hasCode(err, CodeTimeout)
}

// IsValidationError reports whether err is or wraps a validation error.
func IsValidationError(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsServiceError reports whether err is or wraps a generic service error.
func IsServiceError(err error) bool {
	return hasCode(err, CodeService)
}

// IsServiceUnavailableError reports whether err is or wraps a service unavailable error.
func IsServiceUnavailableError(err error) bool {
	return hasCode(err, CodeServiceUnavailable)
}

// IsFileTooLargeError reports whether err is or wraps a file too large error.
func IsFileTooLargeError(err error) bool {
	return hasCode(err, CodeFileTooLarge)
}

// IsBadRequestError reports whether err is or wraps a bad request error.
func IsBadRequestError(err error) bool {
	return hasCode(err, CodeBadRequest)
}

// IsInvalidChunkSizeError reports whether err is or wraps an invalid chunk size error.
func IsInvalidChunkSizeError(err error) bool {
	return hasCode(err, CodeInvalidChunkSize)
}

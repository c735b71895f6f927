// Package errors provides structured error types for the chainlens application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures, resolved locally
//   - *_NOT_FOUND: Resource not found (locally or upstream)
//   - NETWORK_*/TIMEOUT/RATE_LIMITED: Transport and throttling failures
//   - UPSTREAM_*: Non-2xx responses forwarded from the ledger API
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidAddress, "not a recognized address: %s", addr)
//	if errors.Is(err, errors.ErrCodeInvalidAddress) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidAddress     Code = "INVALID_ADDRESS"
	ErrCodeUnsupportedAddress Code = "UNSUPPORTED_ADDRESS"
	ErrCodeInvalidPage        Code = "INVALID_PAGE"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeAddressNotFound Code = "ADDRESS_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Transport and throttling errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Upstream ledger API errors
	ErrCodeUpstream Code = "UPSTREAM_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status surfaced on the HTTP API.
//
// The taxonomy follows the downstream contract: 400 for invalid or
// unsupported addresses, 404 for addresses unknown upstream, 503 for
// throttling and transport failures, 504 for request timeouts, and the
// upstream status verbatim for forwarded upstream errors. Everything
// else is a 500.
func HTTPStatus(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Status >= 400 {
		return ue.Status
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return http.StatusServiceUnavailable
	}

	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidAddress, ErrCodeUnsupportedAddress:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeAddressNotFound, ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited, ErrCodeNetwork:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeInvalidPage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RateLimitedError provides additional information for throttled responses.
// It is surfaced only after the fetcher's single automatic retry has also
// been throttled.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}

// UpstreamError carries the status and detail of a non-2xx, non-429
// response from the ledger API. The status is forwarded to API callers.
type UpstreamError struct {
	Status int    // Upstream HTTP status code
	Detail string // Upstream response detail, if any
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("upstream error: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("upstream error: status %d", e.Status)
}

// Code returns the error code for this error type.
func (e *UpstreamError) Code() Code {
	return ErrCodeUpstream
}

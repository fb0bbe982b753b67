package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeProxyUnavailable = "PROXY_UNAVAILABLE"
	ErrCodeNoContent        = "NO_CONTENT_FOUND"
	ErrCodeInvalidProvider  = "INVALID_PROVIDER"
	ErrCodeUnexpected       = "UNEXPECTED_FAILURE"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeNotFound         = "NOT_FOUND"
)

// ExtractError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ExtractError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// NewExtractError creates a new ExtractError.
func NewExtractError(code, message string, err error) *ExtractError {
	return &ExtractError{Code: code, Message: message, Err: err}
}

// AsExtractError returns err as an *ExtractError. Errors without a code are
// wrapped under ErrCodeUnexpected so every failure surfaces with one.
func AsExtractError(err error) *ExtractError {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee
	}
	return &ExtractError{Code: ErrCodeUnexpected, Message: err.Error(), Err: err}
}

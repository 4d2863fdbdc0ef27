package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeRateLimit    ErrorType = "rate_limit"
	ErrorTypeAuth         ErrorType = "auth"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	ErrorTypeStorage      ErrorType = "storage"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error represents a classified error. RetryAfter is set for rate limit
// errors and carries the server-requested wait.
type Error struct {
	Type       ErrorType
	Message    string
	Code       int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Type == ErrorTypeRateLimit && e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap classifies cause under the given type
func Wrap(errorType ErrorType, message string, cause error) *Error {
	return &Error{Type: errorType, Message: message, Err: cause}
}

// RateLimited reports that the server asked the caller to wait before retrying
func RateLimited(wait time.Duration, cause error) *Error {
	return &Error{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limited",
		Code:       420,
		RetryAfter: wait,
		Err:        cause,
	}
}

// NotFound reports a missing or unresolvable entity
func NotFound(message string, cause error) *Error {
	return &Error{Type: ErrorTypeNotFound, Message: message, Err: cause}
}

// InvalidInput reports a caller mistake that retrying cannot fix
func InvalidInput(message string) *Error {
	return &Error{Type: ErrorTypeInvalidInput, Message: message}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit:
		return true
	case ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeInvalidInput, ErrorTypeStorage:
		return false
	default:
		return false
	}
}

// TypeOf returns the type of the first classified error in err's chain
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// RetryAfter extracts the server-requested wait from a rate limit error
func RetryAfter(err error) (time.Duration, bool) {
	var e *Error
	if errors.As(err, &e) && e.Type == ErrorTypeRateLimit {
		return e.RetryAfter, true
	}
	return 0, false
}

// IsRateLimit reports whether err is a rate limit signal
func IsRateLimit(err error) bool {
	_, ok := RetryAfter(err)
	return ok
}

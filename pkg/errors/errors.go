package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCancelled    ErrorCode = "CANCELLED"

	// Source classification errors
	ErrMissingValue  ErrorCode = "MISSING_VALUE"
	ErrInvalidURL    ErrorCode = "INVALID_URL"
	ErrUnknownSource ErrorCode = "UNKNOWN_SOURCE"

	// Module and config validation errors
	ErrMissingName     ErrorCode = "MISSING_NAME"
	ErrDuplicateModule ErrorCode = "DUPLICATE_MODULE"
	ErrUnknownModule   ErrorCode = "UNKNOWN_MODULE"
	ErrUnknownProfile  ErrorCode = "UNKNOWN_PROFILE"
	ErrInvalidEntry    ErrorCode = "INVALID_ENTRY"
	ErrInvalidLinkMode ErrorCode = "INVALID_LINK_MODE"
	ErrConfigLoad      ErrorCode = "CONFIG_LOAD"
	ErrConfigParse     ErrorCode = "CONFIG_PARSE"
	ErrIncludeCycle    ErrorCode = "CONFIG_INCLUDE_CYCLE"

	// Resolution errors
	ErrFileNotFound         ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidGlob          ErrorCode = "INVALID_GLOB"
	ErrInvalidDestination   ErrorCode = "INVALID_DESTINATION"
	ErrDuplicateDestination ErrorCode = "DUPLICATE_DESTINATION"
	ErrDestinationCollision ErrorCode = "DESTINATION_COLLISION"

	// Deployment errors
	ErrLinkUnsupported ErrorCode = "LINK_UNSUPPORTED"
	ErrConflict        ErrorCode = "CONFLICT"
	ErrFileAccess      ErrorCode = "FILE_ACCESS"

	// Fetch errors
	ErrFetchFailed  ErrorCode = "FETCH_FAILED"
	ErrFetchAuth    ErrorCode = "FETCH_AUTH"
	ErrFetchTimeout ErrorCode = "FETCH_TIMEOUT"
)

// Error represents a structured error with code and details
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an Error. Callers must not pass a nil err.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var cmErr *Error
	if errors.As(err, &cmErr) {
		return cmErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an Error
func GetErrorCode(err error) ErrorCode {
	var cmErr *Error
	if errors.As(err, &cmErr) {
		return cmErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an Error
func GetErrorDetails(err error) map[string]interface{} {
	var cmErr *Error
	if errors.As(err, &cmErr) {
		return cmErr.Details
	}
	return nil
}

// IsRetryable reports whether re-running the command may succeed without
// any change to configuration.
func IsRetryable(err error) bool {
	switch GetErrorCode(err) {
	case ErrFetchTimeout, ErrFetchFailed:
		return true
	default:
		return false
	}
}

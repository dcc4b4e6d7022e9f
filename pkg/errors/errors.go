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
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Rule errors
	ErrInvalidPattern ErrorCode = "INVALID_PATTERN"
	ErrNoPatterns     ErrorCode = "NO_PATTERNS"
	ErrUnknownKey     ErrorCode = "UNKNOWN_KEY"

	// Callback errors
	ErrCallbackNotFound ErrorCode = "CALLBACK_NOT_FOUND"
	ErrCallbackFailed   ErrorCode = "CALLBACK_FAILED"
	ErrCallbackArgs     ErrorCode = "CALLBACK_ARGS"

	// Pipeline errors
	ErrStageNotFound ErrorCode = "STAGE_NOT_FOUND"
	ErrStageFailed   ErrorCode = "STAGE_FAILED"

	// Pattern file errors
	ErrPatternsLoad  ErrorCode = "PATTERNS_LOAD"
	ErrPatternsParse ErrorCode = "PATTERNS_PARSE"
	ErrPatternsWrite ErrorCode = "PATTERNS_WRITE"

	// Output errors
	ErrRender ErrorCode = "RENDER"
)

// RulerError represents a structured error with code and details
type RulerError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RulerError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RulerError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RulerError) Is(target error) bool {
	var targetErr *RulerError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RulerError with the given code and message
func New(code ErrorCode, message string) *RulerError {
	return &RulerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RulerError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RulerError {
	return &RulerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RulerError
func Wrap(err error, code ErrorCode, message string) *RulerError {
	if err == nil {
		return nil
	}
	return &RulerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RulerError {
	if err == nil {
		return nil
	}
	return &RulerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RulerError) WithDetail(key string, value interface{}) *RulerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *RulerError) WithDetails(details map[string]interface{}) *RulerError {
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
	var rulerErr *RulerError
	if errors.As(err, &rulerErr) {
		return rulerErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RulerError
func GetErrorCode(err error) ErrorCode {
	var rulerErr *RulerError
	if errors.As(err, &rulerErr) {
		return rulerErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RulerError
func GetErrorDetails(err error) map[string]interface{} {
	var rulerErr *RulerError
	if errors.As(err, &rulerErr) {
		return rulerErr.Details
	}
	return nil
}

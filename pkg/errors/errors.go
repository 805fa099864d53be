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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Input resolution errors
	ErrCannotProvide ErrorCode = "CANNOT_PROVIDE"

	// Repository errors
	ErrRepo         ErrorCode = "REPO"
	ErrRepoNotFound ErrorCode = "REPO_NOT_FOUND"
	ErrGitBinary    ErrorCode = "GIT_BINARY"

	// Validation errors
	ErrValidation ErrorCode = "VALIDATION"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// OnboardError represents a structured error with code and details
type OnboardError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *OnboardError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *OnboardError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *OnboardError) Is(target error) bool {
	var targetErr *OnboardError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new OnboardError with the given code and message
func New(code ErrorCode, message string) *OnboardError {
	return &OnboardError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new OnboardError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *OnboardError {
	return &OnboardError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an OnboardError
func Wrap(err error, code ErrorCode, message string) *OnboardError {
	if err == nil {
		return nil
	}
	return &OnboardError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *OnboardError {
	if err == nil {
		return nil
	}
	return &OnboardError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *OnboardError) WithDetail(key string, value interface{}) *OnboardError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var onboardErr *OnboardError
	if errors.As(err, &onboardErr) {
		return onboardErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an OnboardError
func GetErrorCode(err error) ErrorCode {
	var onboardErr *OnboardError
	if errors.As(err, &onboardErr) {
		return onboardErr.Code
	}
	return ErrUnknown
}

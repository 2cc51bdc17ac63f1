package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures outside the HTTP surface.
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeNoData     ErrorType = "NO_DATA"
	ErrTypeNoInput    ErrorType = "NO_INPUT"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Process exit codes of the command-line tool.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitNoData  = 2
	ExitNoInput = 3
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ExitCode maps the error type to the command-line exit status.
func (e *AppError) ExitCode() int {
	switch e.Type {
	case ErrTypeNoData:
		return ExitNoData
	case ErrTypeNoInput:
		return ExitNoInput
	default:
		return ExitFailure
	}
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewNoDataError reports an empty selection.
func NewNoDataError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNoData, message, cause)
}

// NewNoInputError reports that no input files were given.
func NewNoInputError(message string) *AppError {
	return NewAppError(ErrTypeNoInput, message, nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// ExitCode returns the exit status for err: ExitOK for nil, the AppError's
// code when one is in the chain, ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode()
	}
	return ExitFailure
}

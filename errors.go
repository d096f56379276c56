package relay

import (
	"errors"
	"fmt"
)

// Error represents a relay library error with categorization.
type Error struct {
	// Code is a machine-readable error code
	Code string

	// Message is a human-readable error message
	Message string

	// Err is the underlying error (if any)
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Error codes for relay operations.
const (
	// ErrCodeNoData indicates no data was found.
	ErrCodeNoData = "NO_DATA"

	// ErrCodeValidation indicates validation failed.
	ErrCodeValidation = "VALIDATION_ERROR"

	// ErrCodeConfiguration indicates invalid configuration.
	ErrCodeConfiguration = "CONFIGURATION_ERROR"

	// ErrCodeDatabase indicates a database operation failed.
	ErrCodeDatabase = "DATABASE_ERROR"

	// ErrCodeAuth indicates a missing, malformed or invalid credential.
	ErrCodeAuth = "AUTH_ERROR"

	// ErrCodeUpgrade indicates a connection upgrade precondition failed.
	ErrCodeUpgrade = "UPGRADE_ERROR"
)

// Common errors.
var (
	// ErrNoData is returned when a query returns no results.
	// This is not necessarily an error condition in all cases.
	ErrNoData = &Error{
		Code:    ErrCodeNoData,
		Message: "no data found",
	}
)

// NewError creates a new Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithCause creates a new Error wrapping an underlying error.
func NewErrorWithCause(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// IsNoData checks if an error is ErrNoData.
func IsNoData(err error) bool {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Code == ErrCodeNoData
	}
	return errors.Is(err, ErrNoData)
}

// IsAuthError checks if an error carries the AUTH_ERROR code.
func IsAuthError(err error) bool {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Code == ErrCodeAuth
	}
	return false
}

// IsValidation checks if an error carries the VALIDATION_ERROR code.
func IsValidation(err error) bool {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Code == ErrCodeValidation
	}
	return false
}

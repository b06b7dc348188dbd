package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents lookups by id that missed
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConstraint represents foreign-key or uniqueness breaches on write
	ErrorTypeConstraint ErrorType = "constraint"
	// ErrorTypeInput represents caller-supplied arguments that failed validation
	ErrorTypeInput ErrorType = "input"
	// ErrorTypeStore represents storage or transport failures
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Entity Errors

// ErrNotFound is returned when an entity lookup by id misses
type ErrNotFound struct {
	*BaseError
	Kind string
	ID   string
}

func NewNotFound(kind, id string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", kind, id), nil),
		Kind:      kind,
		ID:        id,
	}
}

// ErrConstraintViolation is returned when a write breaks a foreign key,
// uniqueness or reference rule
type ErrConstraintViolation struct {
	*BaseError
	Kind       string
	Constraint string
}

func NewConstraintViolation(kind, constraint string, err error) *ErrConstraintViolation {
	return &ErrConstraintViolation{
		BaseError:  NewBaseError(ErrorTypeConstraint, fmt.Sprintf("%s violates %s", kind, constraint), err),
		Kind:       kind,
		Constraint: constraint,
	}
}

// Input Errors

// ErrInvalidInput is returned when an argument fails validation
type ErrInvalidInput struct {
	*BaseError
	Field  string
	Reason string
}

func NewInvalidInput(field, reason string) *ErrInvalidInput {
	return &ErrInvalidInput{
		BaseError: NewBaseError(ErrorTypeInput, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Store Errors

// ErrStoreUnavailable is returned when the backing store cannot serve a call
type ErrStoreUnavailable struct {
	*BaseError
	Backend   string
	Operation string
}

func NewStoreUnavailable(backend, operation string, err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("%s: %s failed", backend, operation), err),
		Backend:   backend,
		Operation: operation,
	}
}

// ErrStoreConnectionFailed is returned when a store connection cannot be established
type ErrStoreConnectionFailed struct {
	*BaseError
	URI string
}

func NewStoreConnectionFailed(uri string, err error) *ErrStoreConnectionFailed {
	return &ErrStoreConnectionFailed{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("failed to connect to store: %s", uri), err),
		URI:       uri,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// typed is implemented by every error in this package through the embedded BaseError
type typed interface {
	error
	errorType() ErrorType
}

func (e *BaseError) errorType() ErrorType { return e.Type }

// IsErrorType checks if an error, or any error it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if t, ok := err.(typed); ok && t.errorType() == errType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether err is a lookup miss
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}

// IsConstraintViolation reports whether err is a rejected write
func IsConstraintViolation(err error) bool {
	return IsErrorType(err, ErrorTypeConstraint)
}

// IsInvalidInput reports whether err is an argument validation failure
func IsInvalidInput(err error) bool {
	return IsErrorType(err, ErrorTypeInput)
}

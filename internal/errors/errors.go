// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrCorruptState    = errors.New("corrupt persisted state")
	ErrAdvisoryFailed  = errors.New("advisory request failed")
	ErrEmptyResponse   = errors.New("empty advisory response")
	ErrNoCredentials   = errors.New("no advisory credentials configured")
	ErrJournalNotFound = errors.New("journal entry not found")
	ErrTradeNotFound   = errors.New("trade not found")
	ErrNoSelectedDate  = errors.New("no day selected")
	ErrUnknownLanguage = errors.New("unsupported language")
	ErrUnknownScanner  = errors.New("unknown scanner")
	ErrDatabaseError   = errors.New("database error")
	ErrInputValidation = errors.New("input validation failed")
	ErrNoHistory       = errors.New("no earlier snapshot")
)

// CorruptStateError is returned when a persisted snapshot cannot be restored.
type CorruptStateError struct {
	Key    string
	Reason string
	Err    error
}

func (e *CorruptStateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt state [%s]: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt state [%s]: %s", e.Key, e.Reason)
}

func (e *CorruptStateError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrCorruptState
}

// Is lets errors.Is match ErrCorruptState even when a cause is wrapped.
func (e *CorruptStateError) Is(target error) bool {
	return target == ErrCorruptState
}

// NewCorruptStateError creates a new CorruptStateError.
func NewCorruptStateError(key, reason string, err error) *CorruptStateError {
	return &CorruptStateError{
		Key:    key,
		Reason: reason,
		Err:    err,
	}
}

// AdvisoryRequestError wraps a failed call to the text generation endpoint.
type AdvisoryRequestError struct {
	Operation string
	Provider  string
	Err       error
}

func (e *AdvisoryRequestError) Error() string {
	return fmt.Sprintf("advisory error [%s] %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *AdvisoryRequestError) Unwrap() error {
	return e.Err
}

func (e *AdvisoryRequestError) Is(target error) bool {
	return target == ErrAdvisoryFailed
}

// NewAdvisoryRequestError creates a new AdvisoryRequestError.
func NewAdvisoryRequestError(provider, operation string, err error) *AdvisoryRequestError {
	return &AdvisoryRequestError{
		Operation: operation,
		Provider:  provider,
		Err:       err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInputValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StorageError represents a failure talking to the durable key-value backend.
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [%s] %s %s: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, op, key string, err error) *StorageError {
	return &StorageError{
		Backend: backend,
		Key:     key,
		Op:      op,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so callers can react without string matching
type ErrorKind string

const (
	// KindValidation marks malformed or missing input (no side effects happened)
	KindValidation ErrorKind = "validation"
	// KindNotFound marks a referenced invoice, order, customer or payment that does not exist
	KindNotFound ErrorKind = "not_found"
	// KindConflict marks a write that could not proceed because of dependent or concurrent state
	KindConflict ErrorKind = "conflict"
	// KindStore marks an underlying read/write failure of the backing store
	KindStore ErrorKind = "store"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
// This keeps errors.Is(err, shared.ErrNotFound) working for errors built with a custom message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Kind == e.Kind
}

// NewDomainError creates a new domain error of the validation kind
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an error for malformed or missing input
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewNotFoundError creates an error for a missing referenced resource
func NewNotFoundError(resource, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

// NewConflictError creates an error for a blocked write
func NewConflictError(code, message string, cause error) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message, Err: cause}
}

// NewStoreError wraps a backing-store failure for the named operation
func NewStoreError(op string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindStore,
		Code:    "STORE_ERROR",
		Message: fmt.Sprintf("store operation %s failed", op),
		Err:     cause,
	}
}

// KindOf returns the kind of err, or an empty kind for non-domain errors
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsStore reports whether err is a store error
func IsStore(err error) bool { return KindOf(err) == KindStore }

// Common domain errors
var (
	ErrNotFound            = &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrAlreadyExists       = &DomainError{Kind: KindConflict, Code: "ALREADY_EXISTS", Message: "Resource already exists"}
	ErrInvalidInput        = &DomainError{Kind: KindValidation, Code: "INVALID_INPUT", Message: "Invalid input provided"}
	ErrConcurrencyConflict = &DomainError{Kind: KindConflict, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
	ErrInvalidState        = &DomainError{Kind: KindValidation, Code: "INVALID_STATE", Message: "Operation not allowed in current state"}
	ErrDuplicateKey        = &DomainError{Kind: KindConflict, Code: "DUPLICATE_KEY", Message: "A row with the same unique key already exists"}
)

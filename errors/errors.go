/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a document is not found
	ErrNotFound = errors.New("document not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrQueryDerivation is returned when a method cannot be turned into a query
	ErrQueryDerivation = errors.New("query derivation failed")

	// ErrParameterBinding is returned when call arguments do not fit the query placeholders
	ErrParameterBinding = errors.New("parameter binding failed")

	// ErrQueryExecution is returned when the store fails to execute a submitted query
	ErrQueryExecution = errors.New("query execution failed")

	// ErrAmbiguousResult marks a single-result query that produced more than one row
	ErrAmbiguousResult = errors.New("ambiguous single result")

	// ErrIndexMissing is wrapped by drivers when the target collection or a
	// required index does not exist
	ErrIndexMissing = errors.New("collection or index missing")

	// ErrStatementRejected is wrapped by drivers when the store refuses the
	// statement text itself
	ErrStatementRejected = errors.New("statement rejected")
)

// NotFoundError represents an error when a document is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// QueryDerivationError is raised when a method name does not parse into the
// predicate grammar, references an unknown property, or disagrees with its
// parameter list. Lazy is set when the store rejected the statement text at
// first execution instead of at startup.
type QueryDerivationError struct {
	Method string
	Reason string
	Lazy   bool
	Cause  error
}

func (e *QueryDerivationError) Error() string {
	msg := fmt.Sprintf("cannot derive query for %s: %s", e.Method, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *QueryDerivationError) Is(target error) bool {
	return target == ErrQueryDerivation
}

func (e *QueryDerivationError) Unwrap() error {
	return e.Cause
}

// ParameterBindingError is raised before submission when a runtime argument
// cannot be bound to its placeholder.
type ParameterBindingError struct {
	Method    string
	Parameter string
	Index     int
	Reason    string
}

func (e *ParameterBindingError) Error() string {
	if e.Parameter != "" {
		return fmt.Sprintf("cannot bind parameter %q (#%d) of %s: %s", e.Parameter, e.Index, e.Method, e.Reason)
	}
	return fmt.Sprintf("cannot bind parameters of %s: %s", e.Method, e.Reason)
}

func (e *ParameterBindingError) Is(target error) bool {
	return target == ErrParameterBinding
}

// QueryExecutionError wraps transport failures and server-side rejections.
// It is never retried by the executor.
type QueryExecutionError struct {
	Method       string
	Statement    string
	IndexMissing bool
	Cause        error
}

func (e *QueryExecutionError) Error() string {
	prefix := "query execution failed"
	if e.IndexMissing {
		prefix = "query execution failed (collection or index missing)"
	}
	if e.Method != "" {
		prefix += " for " + e.Method
	}
	if e.Cause != nil {
		return prefix + ": " + e.Cause.Error()
	}
	return prefix
}

func (e *QueryExecutionError) Is(target error) bool {
	return target == ErrQueryExecution
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Cause
}

// AmbiguousResultWarning reports a single-result query that matched more than
// one document. The first row wins; it is surfaced to warning hooks, never
// returned as the call's error.
type AmbiguousResultWarning struct {
	Method    string
	Discarded int
}

func (e *AmbiguousResultWarning) Error() string {
	return fmt.Sprintf("%s expected at most one result, kept the first and discarded %d", e.Method, e.Discarded)
}

func (e *AmbiguousResultWarning) Is(target error) bool {
	return target == ErrAmbiguousResult
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewDerivationError creates a new QueryDerivationError detected at startup
func NewDerivationError(method, format string, args ...any) error {
	return &QueryDerivationError{Method: method, Reason: fmt.Sprintf(format, args...)}
}

// NewBindingError creates a new ParameterBindingError
func NewBindingError(method, parameter string, index int, format string, args ...any) error {
	return &ParameterBindingError{Method: method, Parameter: parameter, Index: index, Reason: fmt.Sprintf(format, args...)}
}

// NewExecutionError creates a new QueryExecutionError
func NewExecutionError(method, statement string, cause error) error {
	return &QueryExecutionError{Method: method, Statement: statement, Cause: cause}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDerivationError checks if an error is a query derivation error
func IsDerivationError(err error) bool {
	return errors.Is(err, ErrQueryDerivation)
}

// IsBindingError checks if an error is a parameter binding error
func IsBindingError(err error) bool {
	return errors.Is(err, ErrParameterBinding)
}

// IsExecutionError checks if an error is a query execution error
func IsExecutionError(err error) bool {
	return errors.Is(err, ErrQueryExecution)
}

// IsIndexMissing reports whether err is an execution error caused by a
// missing collection or index.
func IsIndexMissing(err error) bool {
	var execErr *QueryExecutionError
	if errors.As(err, &execErr) && execErr.IndexMissing {
		return true
	}
	return errors.Is(err, ErrIndexMissing)
}

// Is reports whether any error in err's tree matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

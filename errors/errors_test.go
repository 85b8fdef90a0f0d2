/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("Airport", "airports::vie")

	assert.Equal(t, `Airport with key "airports::vie" not found`, err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "bucket",
			message:  "required",
			expected: `validation failed for field "bucket": required`,
		},
		{
			name:     "without field",
			message:  "missing connection string",
			expected: "validation failed: missing connection string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)
			assert.Equal(t, tt.expected, err.Error())
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestQueryDerivationError(t *testing.T) {
	t.Run("StartupDetected", func(t *testing.T) {
		err := NewDerivationError("AirportRepository.countByNope", "unknown property %q", "Nope")
		assert.Equal(t, `cannot derive query for AirportRepository.countByNope: unknown property "Nope"`, err.Error())
		assert.True(t, IsDerivationError(err))
		assert.False(t, IsExecutionError(err))
	})

	t.Run("LazyWithCause", func(t *testing.T) {
		cause := fmt.Errorf("ValidationException: unexpected token")
		err := &QueryDerivationError{Method: "m", Reason: "statement rejected", Lazy: true, Cause: cause}
		assert.True(t, IsDerivationError(err))
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "unexpected token")
	})
}

func TestParameterBindingError(t *testing.T) {
	err := NewBindingError("AirportRepository.findByRunways", "runways", 0, "expected numeric value, got %T", "x")
	assert.Equal(t, `cannot bind parameter "runways" (#0) of AirportRepository.findByRunways: expected numeric value, got string`, err.Error())
	assert.True(t, IsBindingError(err))

	countErr := NewBindingError("m", "", 0, "expected 2 arguments, got 1")
	assert.Equal(t, "cannot bind parameters of m: expected 2 arguments, got 1", countErr.Error())
}

func TestQueryExecutionError(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := NewExecutionError("AirportRepository.count", "SELECT ...", cause)

	assert.True(t, IsExecutionError(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsIndexMissing(err))

	missing := &QueryExecutionError{Method: "m", IndexMissing: true, Cause: cause}
	assert.True(t, IsIndexMissing(fmt.Errorf("wrapped: %w", missing)))
	assert.Contains(t, missing.Error(), "collection or index missing")

	driverErr := fmt.Errorf("%w: no such table: airports", ErrIndexMissing)
	assert.True(t, IsIndexMissing(driverErr))
	assert.True(t, Is(fmt.Errorf("%w: syntax error", ErrStatementRejected), ErrStatementRejected))

	var execErr *QueryExecutionError
	assert.True(t, As(fmt.Errorf("outer: %w", missing), &execErr))
	assert.Equal(t, "m", execErr.Method)
}

func TestAmbiguousResultWarning(t *testing.T) {
	w := &AmbiguousResultWarning{Method: "AirportRepository.findByIata", Discarded: 2}
	assert.True(t, errors.Is(w, ErrAmbiguousResult))
	assert.Equal(t, "AirportRepository.findByIata expected at most one result, kept the first and discarded 2", w.Error())
}

func TestErrorWrapping(t *testing.T) {
	original := NewBindingError("m", "p", 1, "bad")
	wrapped := fmt.Errorf("invoke failed: %w", original)

	require.True(t, IsBindingError(wrapped))

	var bindErr *ParameterBindingError
	require.True(t, errors.As(wrapped, &bindErr))
	assert.Equal(t, "p", bindErr.Parameter)
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrQueryDerivation,
		ErrParameterBinding,
		ErrQueryExecution,
		ErrAmbiguousResult,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}

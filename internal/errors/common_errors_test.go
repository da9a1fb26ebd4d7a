package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewAppValidationError("mode is required"),
			expected: "[VALIDATION] mode is required",
		},
		{
			name:     "with cause",
			err:      NewCacheError("read failed", fmt.Errorf("connection refused")),
			expected: "[CACHE] read failed: connection refused",
		},
		{
			name:     "not found",
			err:      NewNotFoundError("analysis"),
			expected: "[NOT_FOUND] analysis not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("redis: nil")
	err := NewCacheError("lookup failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, NewNotFoundError("x").Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeComputation, Message: "analysis failed"}
	err.WithContext("project_id", "p-1").WithContext("mode", "base")

	require.Len(t, err.Context, 2)
	assert.Equal(t, "p-1", err.Context["project_id"])
	assert.Equal(t, "base", err.Context["mode"])
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  *AppError
		want ErrorType
	}{
		{"computation", NewComputationError("m", cause), ErrTypeComputation},
		{"cache", NewCacheError("m", cause), ErrTypeCache},
		{"parsing", NewParsingError("m", cause), ErrTypeParsing},
		{"storage", NewStorageError("m", cause), ErrTypeStorage},
		{"config", NewConfigError("m", cause), ErrTypeConfig},
		{"validation", NewAppValidationError("m"), ErrTypeValidation},
		{"not found", NewNotFoundError("m"), ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestIsType(t *testing.T) {
	inner := NewNotFoundError("analysis")
	outer := NewCacheError("lookup failed", inner)
	wrapped := fmt.Errorf("service: %w", outer)

	assert.True(t, IsType(wrapped, ErrTypeCache))
	assert.True(t, IsType(wrapped, ErrTypeNotFound))
	assert.False(t, IsType(wrapped, ErrTypeValidation))
	assert.False(t, IsType(errors.New("plain"), ErrTypeCache))
	assert.False(t, IsType(nil, ErrTypeCache))
}

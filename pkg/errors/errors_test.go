// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code matching

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "invalid_pattern",
			code:    errors.ErrInvalidPattern,
			message: "pattern 3 is neither a phrase nor a token sequence",
			wantStr: "[INVALID_PATTERN] pattern 3 is neither a phrase nor a token sequence",
		},
		{
			name:    "no_patterns",
			code:    errors.ErrNoPatterns,
			message: "no patterns added",
			wantStr: "[NO_PATTERNS] no patterns added",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrUnknownKey, "match key %d was never registered", 42)
	assert.Equal(t, "match key 42 was never registered", err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("parse failure")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrCallbackFailed, "callback to_datetime.v1 failed")

		assert.Equal(t, errors.ErrCallbackFailed, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[CALLBACK_FAILED] callback to_datetime.v1 failed: parse failure", err.Error())
		assert.True(t, stderrors.Is(err, baseErr))
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestWithDetails(t *testing.T) {
	err := errors.New(errors.ErrInvalidPattern, "bad pattern").
		WithDetail("index", 2).
		WithDetails(map[string]interface{}{"label": "DATE", "id": "birthday"})

	assert.Equal(t, 2, err.Details["index"])
	assert.Equal(t, "DATE", err.Details["label"])
	assert.Equal(t, "birthday", err.Details["id"])
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrNoPatterns, "error 1")
	err2 := errors.New(errors.ErrNoPatterns, "error 2")
	err3 := errors.New(errors.ErrInvalidPattern, "error 3")

	assert.True(t, err1.Is(err2))
	assert.False(t, err1.Is(err3))
	assert.True(t, stderrors.Is(fmt.Errorf("match: %w", err1), err2))
}

func TestCodeHelpers(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w",
		errors.New(errors.ErrUnknownKey, "unknown").WithDetail("key", uint64(7)))

	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrUnknownKey))
	assert.False(t, errors.IsErrorCode(wrapped, errors.ErrNoPatterns))
	assert.Equal(t, errors.ErrUnknownKey, errors.GetErrorCode(wrapped))

	details := errors.GetErrorDetails(wrapped)
	require.NotNil(t, details)
	assert.Equal(t, uint64(7), details["key"])

	plain := stderrors.New("plain")
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(plain))
	assert.Nil(t, errors.GetErrorDetails(plain))
}

package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{Type: ErrorTypeParsing, Message: "bad body", Code: 200}
	assert.Equal(t, "parsing error (code 200): bad body", err.Error())
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeCheckpoint, "value for %s is not JSON", "sina:1:his")
	wrapped := fmt.Errorf("load checkpoint: %w", err)

	assert.True(t, IsType(wrapped, ErrorTypeCheckpoint))
	assert.False(t, IsType(wrapped, ErrorTypeParsing))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeCheckpoint))
	assert.Contains(t, err.Message, "sina:1:his")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeServerError, true},
		{ErrorTypeParsing, false},
		{ErrorTypeNotFound, false},
		{ErrorTypeCheckpoint, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.errorType))
		})
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(429))
	assert.True(t, IsRetryableStatusCode(503))
	assert.False(t, IsRetryableStatusCode(404))
	assert.False(t, IsRetryableStatusCode(403))
	assert.False(t, IsRetryableStatusCode(302))
}

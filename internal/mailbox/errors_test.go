package mailbox

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProviderErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected ErrorKind
	}{
		{name: "server error", status: 500, expected: KindProviderError},
		{name: "rate limited", status: 429, expected: KindProviderError},
		{name: "missing resource", status: 404, expected: KindNotFound},
		{name: "unauthorized", status: 401, expected: KindProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewProviderError(ProviderOutlook, "readThread", tt.status, "body")
			assert.Equal(t, tt.expected, err.Kind)
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, "body", err.Detail, "raw body preserved for diagnostics")
		})
	}
}

func TestErrorMessagePreservesDetail(t *testing.T) {
	err := NewProviderError(ProviderGmail, "listInbox", 503, `{"error":"backend unavailable"}`)
	assert.Contains(t, err.Error(), "backend unavailable")
	assert.Contains(t, err.Error(), "gmail listInbox")
}

func TestIsKindMatchesWrappedErrors(t *testing.T) {
	inner := NewError(KindAuthFailure, ProviderGmail, "getToken", errors.New("refresh rejected"))
	wrapped := fmt.Errorf("connect: %w", inner)

	assert.True(t, IsKind(wrapped, KindAuthFailure))
	assert.False(t, IsKind(wrapped, KindNoCredentials))
	assert.False(t, IsKind(errors.New("plain"), KindAuthFailure))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NewProviderError(ProviderOutlook, "read", 404, "")))
	assert.Equal(t, KindProviderError, KindOf(errors.New("unnormalized")))
}

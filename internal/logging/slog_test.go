package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{name: "regular address", email: "user@example.com"},
		{name: "plus tag", email: "user+tag@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			assert.NotContains(t, got, tt.email)
			assert.Contains(t, got, "user:")
			// Stable for correlation.
			assert.Equal(t, got, AnonymizeEmail(tt.email))
		})
	}

	assert.Equal(t, "", AnonymizeEmail(""))
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))
	got := SanitizeToken("super-secret-token")
	assert.NotContains(t, got, "secret")
	assert.Equal(t, "[token:18 chars]", got)
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "example.com", ExtractDomain("user@example.com"))
	assert.Equal(t, "", ExtractDomain("not-an-email"))
	assert.Equal(t, "", ExtractDomain(""))
}

func TestErrOmitsNil(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("op done", Err(nil))
	assert.NotContains(t, buf.String(), "error=")

	buf.Reset()
	logger.Info("op done", Err(assert.AnError))
	assert.Contains(t, buf.String(), "error=")
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithProvider(WithOperation(logger, "listInbox"), "gmail").Info("start",
		Thread("t1"), Status(StatusSuccess))

	out := buf.String()
	assert.Contains(t, out, "operation=listInbox")
	assert.Contains(t, out, "provider=gmail")
	assert.Contains(t, out, "thread=t1")
	assert.Contains(t, out, "status=success")
}

package mailbox

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a normalized provider-layer failure.
type ErrorKind string

const (
	// KindNoCredentials means no account has usable cached material.
	KindNoCredentials ErrorKind = "no_credentials"

	// KindAuthFailure means a token refresh was rejected by the provider.
	KindAuthFailure ErrorKind = "auth_failure"

	// KindProviderError is a non-2xx provider response or a malformed
	// response shape. The original status and body text are preserved.
	KindProviderError ErrorKind = "provider_error"

	// KindNotFound means a thread, message, or reminder is absent.
	KindNotFound ErrorKind = "not_found"

	// KindReminderNotFound means the reminder-ID recovery chain exhausted.
	KindReminderNotFound ErrorKind = "reminder_not_found"

	// KindPartialFailure means some items of a batch succeeded and others
	// did not.
	KindPartialFailure ErrorKind = "partial_failure"
)

// Error is the only error type adapters let escape. Provider HTTP or parse
// failures are caught at the adapter boundary and wrapped here with the raw
// provider status and body retained for diagnostics; this layer never
// guesses at missing data to mask provider inconsistency.
type Error struct {
	Kind     ErrorKind
	Op       string
	Provider ProviderKind
	Status   int    // HTTP status when the failure came from a response
	Detail   string // raw provider status/body text, or recovery context
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := e.Op
	if e.Provider != "" {
		prefix = fmt.Sprintf("%s %s", e.Provider, e.Op)
	}
	switch {
	case e.Err != nil && e.Detail != "":
		return fmt.Sprintf("%s: %s: %v (%s)", prefix, e.Kind, e.Err, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Kind, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s: %s", prefix, e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Kind)
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error { return e.Err }

// NewError builds a normalized error for the given operation.
func NewError(kind ErrorKind, provider ProviderKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Provider: provider, Err: err}
}

// NewProviderError preserves a raw non-2xx provider response.
func NewProviderError(provider ProviderKind, op string, status int, body string) *Error {
	kind := KindProviderError
	if status == 404 {
		kind = KindNotFound
	}
	return &Error{Kind: kind, Op: op, Provider: provider, Status: status, Detail: body}
}

// IsKind reports whether err is (or wraps) a mailbox Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var me *Error
	return errors.As(err, &me) && me.Kind == kind
}

// KindOf returns the error's kind, or KindProviderError for anything that
// escaped normalization.
func KindOf(err error) ErrorKind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindProviderError
}

package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by an EmailStore when no record exists for an id.
var ErrNotFound = errors.New("email record not found")

// ConfigError signals missing or invalid operator configuration, such as an
// absent From address. It is never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ValidationError signals a required message field that is missing or empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// ProviderError wraps a failure reported by the provider API. The message is
// operator-facing and never shown to the end user who triggered the send.
type ProviderError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider %s failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("provider %s failed", e.Op)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

package provider

import (
	"errors"
	"fmt"
)

// ErrInvalidCredential marks a credential rejected by the local shape check.
var ErrInvalidCredential = errors.New("invalid api key format")

// InitError reports a provider client that could not be constructed.
type InitError struct {
	Provider Kind
	Err      error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize %s: %v", e.Provider, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// GenerationError reports a failed provider call after initialization.
type GenerationError struct {
	Provider Kind
	Message  string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %s", e.Provider, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MalformedResponseError reports a response without the expected text field.
type MalformedResponseError struct {
	Provider Kind
	// Field is the path that was missing or empty.
	Field string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response, %s missing or empty", e.Provider, e.Field)
}

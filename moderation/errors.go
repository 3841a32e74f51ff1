package moderation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no pending record has the given id,
	// including when a concurrent decision removed it first.
	ErrNotFound = errors.New("pending record not found")
	// ErrUnknownAction is wrapped in a ValidationError by Decide.
	ErrUnknownAction = errors.New("action must be approve or reject")
)

// ValidationError reports a record or request the workflow refuses to act on.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StoreError wraps a failure of the backing store. Callers may retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

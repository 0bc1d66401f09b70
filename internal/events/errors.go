package events

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both "does not exist" and "not owned by the
// caller". The two are deliberately indistinguishable so a request can
// never probe for another user's events.
var ErrNotFound = errors.New("event not found")

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// PersistenceError wraps a store failure. No retry happens at this
// layer; the caller decides.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

package rag

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when query validation fails.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports a rejected query parameter with its field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is treat every ValidationError as ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

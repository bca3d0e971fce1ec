package service

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for product lookups that miss, including malformed ids.
var ErrNotFound = errors.New("not found")

// ValidationError reports a request parameter outside its declared constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

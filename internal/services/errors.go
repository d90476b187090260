package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a task, step, or user-scoped resource
	// does not exist for the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrEmptyIdentifier is returned when an identifier is empty after
	// normalization.
	ErrEmptyIdentifier = errors.New("identifier cannot be empty")
)

// ValidationError carries field-level detail for a malformed payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ResolutionError wraps the underlying cause when both the insert and the
// retry read of a user resolution fail.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve user: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

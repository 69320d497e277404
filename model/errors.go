package model

import "strings"

// ValidationError reports malformed or missing input. It never accompanies a
// persisted state change.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Issues, "; ")
}

// ImmutableFieldError is returned when a write-once field (a correlation id)
// would be overwritten with a different value.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return "field " + e.Field + " is immutable once set"
}

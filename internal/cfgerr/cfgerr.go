// Package cfgerr defines the configuration error raised before any toolchain
// invocation when an environment or project input is missing or invalid.
package cfgerr

import (
	"errors"
	"fmt"
)

// Error identifies the offending input alongside the underlying problem.
type Error struct {
	Input string
	Err   error
}

func (e *Error) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Input, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New formats a configuration error for the named input.
func New(input, format string, args ...any) error {
	return &Error{Input: input, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches an input name to an existing error. A nil err yields nil.
func Wrap(input string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Input: input, Err: err}
}

// Is reports whether err is, or wraps, a configuration error.
func Is(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

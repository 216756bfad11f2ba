package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid matches any *ValidationError under errors.Is.
var ErrInvalid = errors.New("config: invalid")

// ValidationError lists every problem Validate found. Each entry starts
// with the offending key, e.g. "fetch.max_attempts must be >= 0".
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return ErrInvalid.Error()
	case 1:
		return ErrInvalid.Error() + ": " + e.Errors[0]
	default:
		return fmt.Sprintf("%s: %d errors:\n  - %s",
			ErrInvalid, len(e.Errors), strings.Join(e.Errors, "\n  - "))
	}
}

// Is reports whether target is ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Add records a problem.
func (e *ValidationError) Add(msg string) {
	e.Errors = append(e.Errors, msg)
}

// Addf records a formatted problem.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Add(fmt.Sprintf(format, args...))
}

// orNil returns e when it holds problems and nil otherwise.
func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// internal/app/store/content/errors.go
package content

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMalformedQuery marks a programming error in a query shape.
	// It is never retried.
	ErrMalformedQuery = errors.New("malformed content query")

	// ErrTransient marks a failure of the remote store that a caller may retry.
	ErrTransient = errors.New("content store unavailable")

	// ErrConfig marks missing or invalid client configuration.
	ErrConfig = errors.New("invalid content configuration")
)

// TransientError carries the cause of a retryable store failure.
type TransientError struct {
	Source string
	Status int // HTTP status, 0 when the failure happened below HTTP
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s returned %d: %v", ErrTransient, e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrTransient, e.Source, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransient) true for every TransientError.
func (e *TransientError) Is(target error) bool { return target == ErrTransient }

// Transient wraps err as a retryable failure of source.
func Transient(source string, status int, err error) error {
	return &TransientError{Source: source, Status: status, Err: err}
}

// IsTransient reports whether err is a retryable store failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsMalformed reports whether err came from an invalid query shape.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedQuery)
}

// classify leaves classified errors alone and marks anything else transient.
// Caller cancellation is passed through untouched.
func classify(source string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsMalformed(err), IsTransient(err), errors.Is(err, ErrConfig):
		return err
	case errors.Is(err, context.Canceled):
		return err
	default:
		return Transient(source, 0, err)
	}
}

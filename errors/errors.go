// Package errors provides error types and handling for sync operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a sync operation error with context about the operation
// that failed. It wraps the underlying error with the bucket and object key
// involved for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "plan", "upload", "delete")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("sync.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("sync.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("sync.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("sync.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewConfigError creates a configuration Error carrying a descriptive message.
// Configuration errors are fatal and are raised before any network activity.
func NewConfigError(op, message string) *Error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%s: %w", message, ErrConfig),
	}
}

// Sentinel errors for the sync error taxonomy.
// These can be used with errors.Is() for error checking.
var (
	// ErrConfig indicates an invalid or incomplete configuration
	// (missing bucket or credentials, missing cwd/dest combination)
	ErrConfig = errors.New("sync: invalid configuration")

	// ErrInvalidParam indicates a transfer parameter name outside the allow-list
	ErrInvalidParam = errors.New("sync: invalid transfer parameter")

	// ErrListing indicates a remote listing failure; listing failures are
	// fatal because no reconciliation decision is safe without a full listing
	ErrListing = errors.New("sync: listing failed")

	// ErrTransfer indicates a per-object put/get failure
	ErrTransfer = errors.New("sync: transfer failed")

	// ErrDelete indicates a batch delete slice reported failures
	ErrDelete = errors.New("sync: delete failed")

	// ErrLocalIO indicates a local filesystem read/write/stat failure
	ErrLocalIO = errors.New("sync: local I/O failed")

	// ErrTaskFailed indicates a task completed with per-object failures
	ErrTaskFailed = errors.New("sync: task failed")
)

// IsConfig checks if an error indicates an invalid configuration.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig) || errors.Is(err, ErrInvalidParam)
}

// IsListing checks if an error indicates a fatal listing failure.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsListing(err error) bool {
	return errors.Is(err, ErrListing)
}

// IsTaskFailed checks if an error indicates a task with per-object failures.
func IsTaskFailed(err error) bool {
	return errors.Is(err, ErrTaskFailed)
}

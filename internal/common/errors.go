// Package common defines constants and sentinel errors shared by the
// netwerker server layers. Callers should use errors.Is to match these values.
package common

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// ErrStoreUnavailable marks a transient store failure. It is the only
	// error kind callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Service-level errors.
	ErrorInternal    = errors.New("internal error")
	ErrValidation    = errors.New("validation error")
	ErrAlreadyExists = errors.New("already exists")
	ErrBlacklisted   = errors.New("email domain is not allowed")

	// Auth errors.
	ErrNoCredential      = errors.New("no credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrExpiredCredential = errors.New("credential expired")
	ErrUnknownSubject    = errors.New("unknown subject")
	ErrForbidden         = errors.New("forbidden")

	// Graph search errors.
	ErrSearchLimitExceeded = errors.New("search limit exceeded")
)

// IsRetryable reports whether err is a transient store failure that the
// caller may retry. Cancellation and deadline errors are not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrStoreUnavailable)
}

// StoreError classifies an error returned by a repository. Domain outcomes
// (not found, conflict, duplicates, validation) and context errors pass
// through unchanged; anything else becomes a transient store failure.
func StoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrorNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrValidation),
		errors.Is(err, ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

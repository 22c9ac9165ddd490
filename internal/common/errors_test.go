package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"store unavailable", ErrStoreUnavailable, true},
		{"wrapped store unavailable", fmt.Errorf("%w: %w", ErrStoreUnavailable, errors.New("conn reset")), true},
		{"conflict", ErrConflict, false},
		{"invalid credential", ErrInvalidCredential, false},
		{"canceled during store call", fmt.Errorf("%w: %w", ErrStoreUnavailable, context.Canceled), false},
		{"deadline", context.DeadlineExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	driverErr := errors.New("connection reset by peer")

	assert := func(cond bool, msg string) {
		t.Helper()
		if !cond {
			t.Fatal(msg)
		}
	}

	assert(StoreError(nil) == nil, "nil stays nil")
	assert(errors.Is(StoreError(driverErr), ErrStoreUnavailable), "driver errors become store unavailable")
	assert(errors.Is(StoreError(driverErr), driverErr), "cause is kept")
	assert(StoreError(ErrorNotFound) == ErrorNotFound, "not found passes through")
	assert(StoreError(ErrConflict) == ErrConflict, "conflict passes through")
	assert(StoreError(context.Canceled) == context.Canceled, "cancellation passes through")

	wrapped := fmt.Errorf("db error: %w", ErrAlreadyExists)
	assert(StoreError(wrapped) == wrapped, "wrapped sentinels pass through")
}

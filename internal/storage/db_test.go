package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

// TestRowErrNotFound verifies pgx.ErrNoRows maps to ErrNotFound, even when wrapped.
func TestRowErrNotFound(t *testing.T) {
	for _, in := range []error{pgx.ErrNoRows, fmt.Errorf("scan: %w", pgx.ErrNoRows)} {
		err := rowErr("workout", in)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("rowErr(%v) = %v, want ErrNotFound", in, err)
		}
	}
}

// TestRowErrPassthrough verifies other errors are wrapped but not mapped.
func TestRowErrPassthrough(t *testing.T) {
	cause := errors.New("connection reset")
	err := rowErr("workout", cause)
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("rowErr mapped %v to ErrNotFound", cause)
	}
	if !errors.Is(err, cause) {
		t.Errorf("rowErr lost the cause: %v", err)
	}
	if got, want := err.Error(), "querying workout: connection reset"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Package recipe defines the recipe content model and the store contract
// shared by all storage backends.
package recipe

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports a lookup for an id the store does not hold. It is a
// well-formed negative result, not an infrastructure failure.
var ErrNotFound = errors.New("recipe not found")

// Store provides durable lookup and enumeration of recipe content. Stores are
// tier-agnostic: Get returns the full document including body regardless of
// tier. Entitlement enforcement belongs to the service layer.
//
// Implementations must be safe for concurrent readers.
type Store interface {
	// List returns summaries for every recipe, ordered by id ascending.
	// An empty store yields an empty slice.
	List(ctx context.Context) ([]Summary, error)
	// Get returns the full recipe for id, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (Recipe, error)
	// Search returns summaries matching query, ranked per the scoring rule
	// in score.go, ties broken by id ascending.
	Search(ctx context.Context, query string) ([]Summary, error)
}

// transientError marks a store or validator failure as retryable I/O.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err to mark it as a transient infrastructure failure.
// Deterministic outcomes (ErrNotFound, validation errors) must not be wrapped.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// Transientf formats and marks a transient infrastructure failure.
func Transientf(format string, args ...any) error {
	return &transientError{err: fmt.Errorf(format, args...)}
}

// IsTransient reports whether err (or anything it wraps) was marked Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

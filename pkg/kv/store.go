package kv

import (
	"context"
	"errors"
)

// Store defines the interface for key/value persistence backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves the value stored under key.
	// Returns ErrNotFound if the key is absent; an empty value is a valid
	// stored value and is returned as an empty (possibly nil) slice.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set persists value under key. If the key already exists it is
	// overwritten; concurrent writers resolve last-writer-wins.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes the entry for key.
	// Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// ErrNotFound is returned by Get when the key has no stored entry.
var ErrNotFound = errors.New("key not found")

// ErrClosed is returned when operations are attempted on a closed store.
var ErrClosed = errors.New("store is closed")

// Scope identifies which of the two conventional stores a value binds to.
type Scope int

const (
	// Local is the durable scope: entries survive process restarts.
	Local Scope = iota

	// Session is the ephemeral scope: entries live as long as the process.
	Session
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case Local:
		return "local"
	case Session:
		return "session"
	default:
		return "unknown"
	}
}

// Scopes pairs the two stores of a browser-like storage environment:
// a durable Local store and an ephemeral Session store.
//
// A Scopes value assembled from caller-owned stores has no lifecycle of its
// own; one opened via EnvConfig.Open owns its backends and releases them
// through Close.
type Scopes struct {
	Local   Store
	Session Store

	closers []func() error
}

// For returns the store for the given scope, or nil if the scope is unknown
// or unset.
func (s *Scopes) For(scope Scope) Store {
	switch scope {
	case Local:
		return s.Local
	case Session:
		return s.Session
	default:
		return nil
	}
}

// Close releases backends owned by this Scopes value. Stores supplied by the
// caller are left untouched. The first error is returned, but all owned
// backends are closed regardless.
func (s *Scopes) Close() error {
	var first error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

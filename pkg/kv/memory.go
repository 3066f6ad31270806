package kv

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory store implementation. It is the conventional
// Session-scope backend and suitable anywhere persistence across restarts
// is not required. For durable storage use BoltStore or SQLStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]byte),
	}
}

// Get retrieves the value stored under key.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	value, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy to prevent mutations
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, nil
}

// Set stores value under key, overwriting any existing entry.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	// Make a copy of value to prevent mutations
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	m.entries[key] = valueCopy
	return nil
}

// Remove deletes the entry for key. Removing an absent key is a no-op.
func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	delete(m.entries, key)
	return nil
}

// Close shuts down the store and releases its entries.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	m.entries = nil
	return nil
}

// Len returns the number of entries in the store.
// This is for monitoring/testing purposes.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

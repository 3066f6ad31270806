package kv

import (
	"context"
	"errors"
	"testing"
)

// TestMemoryStore tests the in-memory store implementation.
func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	key := "app:theme"
	value := []byte(`"dark"`)

	t.Run("Set", func(t *testing.T) {
		if err := store.Set(ctx, key, value); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != string(value) {
			t.Errorf("Get returned wrong value: got %s, want %s", got, value)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for missing key, got %v", err)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := store.Set(ctx, key, []byte(`"light"`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != `"light"` {
			t.Errorf("expected overwritten value, got %s", got)
		}
	})

	t.Run("EmptyValue", func(t *testing.T) {
		if err := store.Set(ctx, "empty", nil); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := store.Get(ctx, "empty")
		if err != nil {
			t.Fatalf("empty value must be present, got %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty value, got %q", got)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := store.Remove(ctx, key); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after Remove, got %v", err)
		}
	})

	t.Run("RemoveAbsent", func(t *testing.T) {
		if err := store.Remove(ctx, "never-existed"); err != nil {
			t.Errorf("Remove of absent key should succeed, got %v", err)
		}
	})
}

func TestMemoryStoreDefensiveCopies(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	value := []byte("original")

	if err := store.Set(ctx, "k", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Mutating the caller's slice must not affect the stored value
	value[0] = 'X'
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("stored value was mutated: got %s", got)
	}

	// Mutating a returned slice must not affect the stored value
	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(again) != "original" {
		t.Errorf("returned value aliases store memory: got %s", again)
	}
}

func TestMemoryStoreLen(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", store.Len())
	}

	store.Set(ctx, "a", []byte("1"))
	store.Set(ctx, "b", []byte("2"))
	store.Set(ctx, "a", []byte("3")) // overwrite, not a new entry
	if store.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", store.Len())
	}

	store.Remove(ctx, "a")
	if store.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", store.Len())
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Closing twice is fine
	if err := store.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get on closed store: expected ErrClosed, got %v", err)
	}
	if err := store.Set(ctx, "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set on closed store: expected ErrClosed, got %v", err)
	}
	if err := store.Remove(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Remove on closed store: expected ErrClosed, got %v", err)
	}
}

package kv

import (
	"context"
	"errors"
	"testing"
)

func TestScopeString(t *testing.T) {
	tests := []struct {
		scope Scope
		want  string
	}{
		{Local, "local"},
		{Session, "session"},
		{Scope(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.scope.String(); got != tt.want {
			t.Errorf("Scope(%d).String() = %q, want %q", tt.scope, got, tt.want)
		}
	}
}

func TestScopesFor(t *testing.T) {
	local := NewMemoryStore()
	session := NewMemoryStore()
	scopes := &Scopes{Local: local, Session: session}

	if scopes.For(Local) != Store(local) {
		t.Error("For(Local) did not return the local store")
	}
	if scopes.For(Session) != Store(session) {
		t.Error("For(Session) did not return the session store")
	}
	if scopes.For(Scope(42)) != nil {
		t.Error("For(unknown) should return nil")
	}
}

func TestScopesCloseWithoutOwnership(t *testing.T) {
	local := NewMemoryStore()
	scopes := &Scopes{Local: local, Session: NewMemoryStore()}

	if err := scopes.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Caller-supplied stores stay open
	if err := local.Set(context.Background(), "k", nil); err != nil {
		t.Errorf("caller-owned store must remain open, got %v", err)
	}
}

func TestScopesCloseReturnsFirstError(t *testing.T) {
	errA := errors.New("a failed")
	closed := 0
	scopes := &Scopes{}
	scopes.closers = []func() error{
		func() error { closed++; return errA },
		func() error { closed++; return errors.New("b failed") },
	}

	if err := scopes.Close(); !errors.Is(err, errA) {
		t.Errorf("expected first close error, got %v", err)
	}
	if closed != 2 {
		t.Errorf("expected all closers to run, got %d", closed)
	}

	// Close is idempotent once the closers have been released
	if err := scopes.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

package kv

import "testing"

func TestSQLStoreDefaults(t *testing.T) {
	store := NewSQLStore(nil)
	if store.tableName != "kvbind_entries" {
		t.Errorf("expected default table name kvbind_entries, got %s", store.tableName)
	}
	if store.dialect != DialectPostgreSQL {
		t.Errorf("expected default dialect PostgreSQL, got %d", store.dialect)
	}
	if store.ownsDB {
		t.Error("store over a shared handle must not own it")
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close of non-owning store must be a no-op, got %v", err)
	}
}

func TestSQLStoreOptions(t *testing.T) {
	store := NewSQLStore(nil,
		WithSQLTableName("my_entries"),
		WithSQLDialect(DialectMySQL),
	)
	if store.tableName != "my_entries" {
		t.Errorf("expected table name my_entries, got %s", store.tableName)
	}
	if store.dialect != DialectMySQL {
		t.Errorf("expected MySQL dialect, got %d", store.dialect)
	}
}

func TestSQLStorePlaceholder(t *testing.T) {
	tests := []struct {
		dialect SQLDialect
		want    string
	}{
		{DialectPostgreSQL, "$2"},
		{DialectMySQL, "?"},
		{DialectSQLite, "?"},
	}
	for _, tt := range tests {
		store := NewSQLStore(nil, WithSQLDialect(tt.dialect))
		if got := store.placeholder(2); got != tt.want {
			t.Errorf("dialect %d: placeholder(2) = %s, want %s", tt.dialect, got, tt.want)
		}
	}
}

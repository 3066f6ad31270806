package kv

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (creating if necessary) a SQLite-backed store at path and
// ensures its schema exists. The returned store owns the database handle;
// Close releases it.
//
// The driver is the pure-Go modernc.org/sqlite, so no cgo is required.
func OpenSQLite(path string, opts ...SQLStoreOption) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := NewSQLStore(db, append(opts, WithSQLDialect(DialectSQLite))...)
	store.ownsDB = true

	if err := store.CreateTable(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return store, nil
}

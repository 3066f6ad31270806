package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

// DefaultBoltBucket is the bucket entries are stored in unless overridden
// with WithBoltBucket.
const DefaultBoltBucket = "kvbind"

// BoltStore is a file-backed store using bbolt. It is the conventional
// Local-scope backend: a single file, no server, durable across restarts.
type BoltStore struct {
	db     *bbolt.DB
	bucket []byte
}

// BoltOption configures BoltStore behavior.
type BoltOption func(*boltConfig)

type boltConfig struct {
	bucket string
}

// WithBoltBucket sets the bucket entries are stored in.
// Default: DefaultBoltBucket.
func WithBoltBucket(name string) BoltOption {
	return func(c *boltConfig) {
		c.bucket = name
	}
}

// OpenBolt opens (creating if necessary) a bbolt-backed store at path.
func OpenBolt(path string, opts ...BoltOption) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("bolt store path is required")
	}

	cfg := &boltConfig{bucket: DefaultBoltBucket}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.bucket == "" {
		return nil, fmt.Errorf("bolt bucket name is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	store := &BoltStore{db: db, bucket: []byte(cfg.bucket)}
	if err := store.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Get retrieves the value stored under key.
func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return fmt.Errorf("bucket %q is missing", s.bucket)
		}
		payload := bucket.Get([]byte(key))
		if payload == nil {
			return ErrNotFound
		}
		// Copy out: bbolt slices are only valid inside the transaction.
		value = make([]byte, len(payload))
		copy(value, payload)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key, overwriting any existing entry.
func (s *BoltStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return fmt.Errorf("bucket %q is missing", s.bucket)
		}
		return bucket.Put([]byte(key), value)
	})
}

// Remove deletes the entry for key. Removing an absent key is a no-op.
func (s *BoltStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return fmt.Errorf("bucket %q is missing", s.bucket)
		}
		return bucket.Delete([]byte(key))
	})
}

// Close closes the underlying bbolt database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) ensureBucket() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(s.bucket); err != nil {
			return fmt.Errorf("create bucket %q: %w", s.bucket, err)
		}
		return nil
	})
}

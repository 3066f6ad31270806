// Package kv provides the key/value store capability bindings persist
// through, plus a set of pluggable backends.
//
// This package implements the minimal Get/Set/Remove contract the binding
// layer depends on, with backends from in-memory maps to S3, and optional
// Prometheus and OpenTelemetry instrumentation.
//
// # The Store Contract
//
// Store is the capability injected into bindings. Get returns ErrNotFound
// for absent keys, Set overwrites last-writer-wins, and Remove of an absent
// key succeeds:
//
//	store := kv.NewMemoryStore()
//	// or
//	store, err := kv.OpenBolt("state.db")
//	// or
//	store, err := kv.OpenSQLite("state.db")
//	// or
//	store := kv.NewSQLStore(db, kv.WithSQLDialect(kv.DialectPostgreSQL))
//	// or
//	store := kv.NewRedisStore(redisClient)
//	// or
//	store := kv.NewS3Store(s3Client, "my-bucket")
//
// # Scopes
//
// Scopes pairs a durable Local store with an ephemeral Session store,
// mirroring the two storage areas of a browser-like environment:
//
//	scopes := &kv.Scopes{Local: boltStore, Session: kv.NewMemoryStore()}
//	store := scopes.For(kv.Local)
//
// OpenScopesFromEnv assembles the pair from KVBIND_* environment variables
// and owns the backends it opens.
//
// # Instrumentation
//
// Any store can be wrapped with Prometheus metrics or OpenTelemetry spans:
//
//	store = kv.WithMetrics(store)
//	store = kv.WithTracing(store)
package kv

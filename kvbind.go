// Package kvbind binds observable values to key/value stores.
//
// A binding is an observable container whose current value survives process
// restarts. Construction reads the stored payload once and decodes it (or
// falls back to a caller-supplied fallback value when nothing is stored);
// every publish after that writes the new value back to the store before
// returning. Subscribers receive the current value immediately on subscribe
// and every published value after that.
//
// Basic usage:
//
//	scopes, err := kvbind.OpenScopesFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer scopes.Close()
//
//	theme, err := kvbind.Bind(ctx, scopes.For(kvbind.Local), "theme", "light")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	unsubscribe := theme.Subscribe(func(v string) {
//		applyTheme(v)
//	})
//	defer unsubscribe()
//
//	if err := theme.Set(ctx, "dark"); err != nil {
//		log.Printf("theme not persisted: %v", err)
//	}
//
// Values are serialized with JSON by default; WithCodec swaps the codec and
// BindConverted adds a typed conversion step in front of it for types whose
// natural form does not serialize well (see TimeMillis). Keys are namespaced
// with DefaultKeyPrefix so bindings coexist with other entries in a shared
// store; WithKeyPrefix overrides the prefix per binding.
//
// Store backends live in pkg/kv. The Store interface is three methods, so
// any key/value system can back a binding; memory, bbolt, SQL, Redis and S3
// implementations ship in the box, along with Prometheus and OpenTelemetry
// instrumentation decorators.
package kvbind

import (
	"context"
	"errors"
	"log/slog"
	"reflect"

	"github.com/kvbind-dev/kvbind/pkg/kv"
	"github.com/kvbind-dev/kvbind/pkg/observable"
)

// Bound is an observable value backed by a store entry. Reads are served
// from memory; publishes update subscribers first and then write the new
// value back to the store.
//
// Bound is safe for concurrent use, but the write-back pipeline assumes one
// logical writer per key: concurrent publishers may interleave their store
// writes in either order.
type Bound[T any] struct {
	val      *observable.Value[T]
	store    kv.Store
	key      string
	fallback T
	encode   func(T) ([]byte, error)
	logger   *slog.Logger
}

// Bind constructs a binding for key on store. If the store holds a payload
// for the namespaced key it is decoded as the initial value; a decode
// failure aborts construction with a *DecodeError and leaves the stored
// entry untouched. If nothing is stored, fallback becomes the initial value.
// Construction never writes to the store.
func Bind[T any](ctx context.Context, store kv.Store, key string, fallback T, opts ...Option) (*Bound[T], error) {
	return BindConverted(ctx, store, key, fallback, identityConverter[T](), opts...)
}

// BindConverted is Bind with a conversion step between the application type
// T and the stored form S. The codec sees only S: decoding unmarshals into S
// and applies conv.FromStored, publishing applies conv.ToStored and marshals
// the result.
func BindConverted[T, S any](ctx context.Context, store kv.Store, key string, fallback T, conv Converter[T, S], opts ...Option) (*Bound[T], error) {
	cfg := defaultBindConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if key == "" {
		return nil, &ConfigError{Key: key, Reason: "key must be non-empty"}
	}
	if store == nil {
		return nil, &ConfigError{Key: key, Reason: "store is required"}
	}
	if conv.ToStored == nil || conv.FromStored == nil {
		return nil, &ConfigError{Key: key, Reason: "converter must set both ToStored and FromStored"}
	}
	if cfg.codec == nil {
		return nil, &ConfigError{Key: key, Reason: "codec is required"}
	}

	fullKey := cfg.prefix + key
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("key", fullKey)

	initial := fallback
	data, err := store.Get(ctx, fullKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		logger.Debug("no stored value, starting from fallback")
	case err != nil:
		return nil, &StoreError{Op: "get", Key: fullKey, Err: err}
	default:
		var stored S
		if err := cfg.codec.Unmarshal(data, &stored); err != nil {
			return nil, &DecodeError{Key: fullKey, Err: err}
		}
		value, err := conv.FromStored(stored)
		if err != nil {
			return nil, &DecodeError{Key: fullKey, Err: err}
		}
		initial = value
		logger.Debug("loaded stored value")
	}

	codec := cfg.codec
	encode := func(v T) ([]byte, error) {
		stored, err := conv.ToStored(v)
		if err != nil {
			return nil, err
		}
		return codec.Marshal(stored)
	}

	return &Bound[T]{
		val:      observable.NewValue(initial),
		store:    store,
		key:      fullKey,
		fallback: fallback,
		encode:   encode,
		logger:   logger,
	}, nil
}

// MustBind is Bind, panicking on error. Intended for initialization paths
// where a broken binding is fatal.
func MustBind[T any](ctx context.Context, store kv.Store, key string, fallback T, opts ...Option) *Bound[T] {
	b, err := Bind(ctx, store, key, fallback, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// MustBindConverted is BindConverted, panicking on error.
func MustBindConverted[T, S any](ctx context.Context, store kv.Store, key string, fallback T, conv Converter[T, S], opts ...Option) *Bound[T] {
	b, err := BindConverted(ctx, store, key, fallback, conv, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Get returns the current value. It never touches the store.
func (b *Bound[T]) Get() T {
	return b.val.Get()
}

// Set publishes value to all subscribers and writes it back to the store.
// The publish happens before the write, so on failure the returned
// *EncodeError or *StoreError reports a value that subscribers have already
// seen and that diverges from the stored form until a later publish
// succeeds.
//
// A nil value (nil pointer, slice, map, interface, function or channel)
// clears the binding instead of storing an encoded nil; see Clear.
func (b *Bound[T]) Set(ctx context.Context, value T) error {
	if isNil(value) {
		return b.Clear(ctx)
	}

	b.val.Set(value)

	payload, err := b.encode(value)
	if err != nil {
		b.logger.Warn("published value could not be encoded, store is stale", "error", err)
		return &EncodeError{Key: b.key, Err: err}
	}
	if err := b.store.Set(ctx, b.key, payload); err != nil {
		b.logger.Warn("write-back failed, store is stale", "error", err)
		return &StoreError{Op: "set", Key: b.key, Err: err}
	}
	return nil
}

// Update publishes fn applied to the current value. It is a convenience for
// Set(ctx, fn(Get())) and provides no atomicity beyond it.
func (b *Bound[T]) Update(ctx context.Context, fn func(T) T) error {
	return b.Set(ctx, fn(b.val.Get()))
}

// Clear removes the stored entry and publishes the fallback value. The
// removal happens first: if it fails, a *StoreError is returned and the
// current value is left as is. The fallback itself is not written back, so
// a cleared binding restarts from the fallback only until the next publish.
func (b *Bound[T]) Clear(ctx context.Context) error {
	if err := b.store.Remove(ctx, b.key); err != nil {
		return &StoreError{Op: "remove", Key: b.key, Err: err}
	}
	b.val.Set(b.fallback)
	b.logger.Debug("cleared, fallback restored")
	return nil
}

// Subscribe registers handler and invokes it immediately with the current
// value. Every subsequent publish invokes it again, including publishes of
// values equal to the current one. The returned function removes the
// subscription and is safe to call more than once.
func (b *Bound[T]) Subscribe(handler func(T)) (unsubscribe func()) {
	return b.val.Subscribe(handler)
}

// Key returns the full namespaced store key the binding reads and writes.
func (b *Bound[T]) Key() string {
	return b.key
}

// isNil reports whether value is nil either directly or through a nilable
// kind boxed in the type parameter.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// =============================================================================
// Store re-exports
// =============================================================================

// Store is the key/value capability bindings persist through. Implementations
// live in pkg/kv.
type Store = kv.Store

// Scope selects between the conventional Local and Session stores of a
// Scopes pair.
type Scope = kv.Scope

// Scopes pairs a durable Local store with a process-lifetime Session store.
type Scopes = kv.Scopes

// Scope values for Scopes.For.
const (
	Local   = kv.Local
	Session = kv.Session
)

// ErrNotFound is the sentinel stores report for absent keys.
var ErrNotFound = kv.ErrNotFound

// NewMemoryStore returns an in-memory store, the usual Session backend and
// test double.
var NewMemoryStore = kv.NewMemoryStore

// OpenScopesFromEnv opens a Scopes pair configured from KVBIND_* environment
// variables.
var OpenScopesFromEnv = kv.OpenScopesFromEnv

// =============================================================================
// Observable re-exports
// =============================================================================

// Value is the observable container underlying Bound, usable on its own for
// state that should not persist.
type Value[T any] = observable.Value[T]

// NewValue constructs a standalone observable value.
func NewValue[T any](initial T, opts ...observable.Option[T]) *Value[T] {
	return observable.NewValue(initial, opts...)
}

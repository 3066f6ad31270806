package kvbind

import "fmt"

// ConfigError is returned when a binding is constructed with invalid
// configuration: an empty key, a nil store, a half-specified converter, or a
// nil codec. Nothing is read from or written to the store before
// configuration is validated.
type ConfigError struct {
	// Key is the binding key as supplied by the caller.
	Key string

	// Reason describes what is invalid.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("kvbind: invalid binding for key %q: %s", e.Key, e.Reason)
}

// DecodeError is returned from construction when a stored payload exists but
// cannot be decoded or converted into the bound type. The binding is not
// created; the stored entry is left untouched.
type DecodeError struct {
	// Key is the full namespaced store key.
	Key string

	// Err is the underlying decode or converter failure.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("kvbind: decode stored value for %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is returned from a publish when the value cannot be converted
// or serialized for storage. The in-memory value has already been published;
// the stored form is unchanged.
type EncodeError struct {
	// Key is the full namespaced store key.
	Key string

	// Err is the underlying converter or serialization failure.
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("kvbind: encode value for %q: %v", e.Key, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// StoreError wraps a failure of the underlying store. Op is "get" for the
// construction-time read, "set" for write-back, "remove" for clears. Store
// failures are never retried or swallowed; for write-back failures the
// in-memory value remains published and diverges from the stored form until
// a later publish succeeds.
type StoreError struct {
	// Op is the store operation that failed.
	Op string

	// Key is the full namespaced store key.
	Key string

	// Err is the error reported by the store.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("kvbind: store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

package kvbind

import "time"

// Converter maps between the application value type T and the stored form S.
// BindConverted applies FromStored after decoding and ToStored before
// encoding, so types whose natural representation does not serialize well
// can pick a stable stored shape. Both directions must be set.
type Converter[T, S any] struct {
	// ToStored produces the stored form written on publish.
	ToStored func(T) (S, error)

	// FromStored restores the application value from a stored form.
	FromStored func(S) (T, error)
}

// identityConverter stores T directly, with no conversion step. Bind uses it
// so that Bind and BindConverted share one construction path.
func identityConverter[T any]() Converter[T, T] {
	return Converter[T, T]{
		ToStored:   func(v T) (T, error) { return v, nil },
		FromStored: func(v T) (T, error) { return v, nil },
	}
}

// TimeMillis stores time.Time values as Unix millisecond timestamps.
// Sub-millisecond precision and the time zone are not preserved; restored
// values are in the local location. Compare with time.Time.Equal.
func TimeMillis() Converter[time.Time, int64] {
	return Converter[time.Time, int64]{
		ToStored: func(t time.Time) (int64, error) {
			return t.UnixMilli(), nil
		},
		FromStored: func(ms int64) (time.Time, error) {
			return time.UnixMilli(ms), nil
		},
	}
}

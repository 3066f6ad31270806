package observable

import (
	"sync"
	"sync/atomic"
)

// subscriberIDCounter generates process-unique subscription IDs.
var subscriberIDCounter uint64

func nextSubscriberID() uint64 {
	return atomic.AddUint64(&subscriberIDCounter, 1)
}

// subscriber pairs a handler with the ID its unsubscribe closure removes it by.
type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Value is an observable value container. It holds a current value,
// multicasts every published value to all subscribed handlers, and replays
// the current value to each new subscriber on registration.
//
// By default every Set notifies, including republication of an equal value.
// Use WithEquals to suppress notifications for values the equality function
// considers unchanged.
type Value[T any] struct {
	// value is the current contained value.
	value T

	// mu protects the value.
	mu sync.RWMutex

	// subs are the handlers subscribed to this container.
	subs []subscriber[T]

	// subMu protects the subs slice.
	subMu sync.RWMutex

	// equal, when non-nil, suppresses notification of unchanged values.
	equal func(T, T) bool
}

// Option configures a Value.
type Option[T any] func(*Value[T])

// WithEquals configures the container to skip notifications when the given
// function reports the new value equal to the current one. Without this
// option every Set notifies.
func WithEquals[T any](eq func(a, b T) bool) Option[T] {
	return func(v *Value[T]) {
		v.equal = eq
	}
}

// NewValue creates a container holding the given initial value.
func NewValue[T any](initial T, opts ...Option[T]) *Value[T] {
	v := &Value[T]{value: initial}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set stores newValue as the current value and synchronously notifies all
// subscribers. With a single publishing goroutine, subscribers observe
// published values in publish order; concurrent publishers are safe but
// establish no ordering between their notifications.
func (v *Value[T]) Set(newValue T) {
	v.mu.Lock()
	if v.equal != nil && v.equal(v.value, newValue) {
		v.mu.Unlock()
		return
	}
	v.value = newValue
	v.mu.Unlock()

	v.notify(newValue)
}

// Update atomically reads and replaces the current value.
// The function receives the current value and returns the new one, which is
// published exactly as with Set.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	newValue := fn(v.value)
	if v.equal != nil && v.equal(v.value, newValue) {
		v.mu.Unlock()
		return
	}
	v.value = newValue
	v.mu.Unlock()

	v.notify(newValue)
}

// Subscribe registers handler and immediately invokes it with the current
// value. Afterwards the handler receives every published value until the
// returned unsubscribe function is called. Unsubscribe is idempotent, and a
// handler may subscribe or unsubscribe from within a notification.
func (v *Value[T]) Subscribe(handler func(T)) (unsubscribe func()) {
	if handler == nil {
		return func() {}
	}

	id := nextSubscriberID()

	v.subMu.Lock()
	v.subs = append(v.subs, subscriber[T]{id: id, fn: handler})
	v.subMu.Unlock()

	handler(v.Get())

	return func() {
		v.subMu.Lock()
		defer v.subMu.Unlock()
		for i, existing := range v.subs {
			if existing.id == id {
				// Remove by swapping with the last element.
				v.subs[i] = v.subs[len(v.subs)-1]
				v.subs = v.subs[:len(v.subs)-1]
				return
			}
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (v *Value[T]) Subscribers() int {
	v.subMu.RLock()
	defer v.subMu.RUnlock()
	return len(v.subs)
}

// notify delivers value to every subscriber.
// Uses copy-before-notify so handlers run without locks held and may
// subscribe or unsubscribe during delivery.
func (v *Value[T]) notify(value T) {
	v.subMu.RLock()
	subs := make([]subscriber[T], len(v.subs))
	copy(subs, v.subs)
	v.subMu.RUnlock()

	for _, sub := range subs {
		sub.fn(value)
	}
}

// Package observable provides a minimal push-based observable value
// container.
//
// Value[T] holds a current value, notifies subscribers synchronously on
// every publish, and replays the latest value to new subscribers:
//
//	theme := observable.NewValue("light")
//	unsubscribe := theme.Subscribe(func(v string) {
//	    fmt.Println("theme:", v) // fires immediately with "light"
//	})
//	theme.Set("dark") // subscribers receive "dark"
//	unsubscribe()
//
// # Notification Semantics
//
// Every Set notifies by default, including republication of a value equal
// to the current one. WithEquals opts in to change-suppression:
//
//	n := observable.NewValue(0, observable.WithEquals(func(a, b int) bool {
//	    return a == b
//	}))
//	n.Set(0) // no notification
//
// # Thread Safety
//
// All methods are safe for concurrent use. Notifications run synchronously
// on the publishing goroutine with no locks held, so handlers may freely
// read the container or manage subscriptions. Publish ordering is only
// defined per publishing goroutine.
package observable

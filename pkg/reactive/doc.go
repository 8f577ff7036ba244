// Package reactive provides dependency-tracked records and ref cells.
//
// A Scope owns a dependency tracker and hands out two kinds of reactive
// values:
//
//	scope := reactive.NewScope()
//	state := scope.Reactive(map[string]any{"count": 0})
//	count := scope.Ref(0)
//
// Reading a property (Object.Get, Ref.Value) while a watcher is evaluating
// subscribes that watcher to the property. Writing a property (Object.Set,
// Ref.Set) calls the scope's change hook and then synchronously re-runs every
// subscribed watcher before returning.
//
// # Watchers
//
// Three registration forms are supported:
//
//	stop := scope.WatchEffect(func() { log.Println(state.Get("count")) })
//	scope.WatchGetter(func() any { return state.Get("count") }, func(v, prev any) {})
//	scope.WatchRef(count, func(v, prev any) {})
//
// Every form evaluates once at registration. Getter and ref watchers also fire
// their callback immediately with a nil previous value. On later writes the
// getter is evaluated again and the callback receives the new value and the
// value observed on the previous evaluation. The returned StopFunc removes all
// subscriptions and may be called any number of times.
//
// # Nested values
//
// Objects are deep: any map[string]any stored in an Object or Ref is converted
// to an *Object. Each Reactive, Ref or Set call walks its input afresh; within
// one walk a map reached twice, shared or cyclic, resolves to a single
// wrapper. Refs stored inside objects are unwrapped on read and written through
// on write.
//
// # Thread Safety
//
// A Scope and everything created from it must be used from a single goroutine.
// There is no locking: the host scheduler is expected to be single threaded.
package reactive

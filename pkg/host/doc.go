// Package host is a minimal single-threaded component host.
//
// It provides the collaboration points a composition hook needs from a UI
// runtime:
//
//   - a per-component Owner with lifecycle cleanups and hook slots that keep
//     stable identity across renders
//   - UseForceUpdate, a trigger that requests a re-render of its component
//   - UseMemo, a value recomputed only when its dependencies change
//   - a Scheduler that mounts components, queues update requests and
//     re-renders every dirty component once per Flush
//
// Update requests never render synchronously: they are queued and rendered on
// the next Flush, so several writes in one handler produce a single render.
//
//	sched := host.NewScheduler()
//	c := sched.Mount("counter", func(o *host.Owner) string {
//	    t := host.UseForceUpdate(o)
//	    return fmt.Sprint(t.Token())
//	})
//	...
//	sched.Flush(ctx)
//
// # Thread Safety
//
// A Scheduler is bound to the goroutine that created it. With DebugMode set,
// using it from another goroutine panics.
package host

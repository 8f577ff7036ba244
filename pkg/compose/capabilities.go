package compose

import "github.com/vango-dev/compose/pkg/reactive"

// Values is the record returned by a setup function. Its key set is fixed for
// the lifetime of a given setup.
type Values map[string]any

// SetupFunc builds a component's reactive state. It must not call hooks.
type SetupFunc func(c *Capabilities) Values

// Capabilities is the API handed to a setup function. Everything it creates
// belongs to the calling component instance.
type Capabilities struct {
	scope *reactive.Scope
}

// Reactive returns a deep reactive copy of obj. Writes request a re-render.
func (c *Capabilities) Reactive(obj map[string]any) *reactive.Object {
	return c.scope.Reactive(obj)
}

// Ref returns a ref cell. Writes request a re-render and refresh the unwrapped
// values returned by Use.
func (c *Capabilities) Ref(value any) *reactive.Ref {
	return c.scope.Ref(value)
}

// IsRef reports whether v is a ref cell.
func (c *Capabilities) IsRef(v any) bool {
	return reactive.IsRef(v)
}

// Watch registers a watcher; see reactive.Scope.Watch for accepted sources.
func (c *Capabilities) Watch(source any, cb reactive.Callback) (reactive.StopFunc, error) {
	return c.scope.Watch(source, cb)
}

// WatchEffect registers an effect watcher.
func (c *Capabilities) WatchEffect(fn func()) reactive.StopFunc {
	return c.scope.WatchEffect(fn)
}

// WatchGetter registers a getter watcher.
func (c *Capabilities) WatchGetter(getter func() any, cb reactive.Callback) reactive.StopFunc {
	return c.scope.WatchGetter(getter, cb)
}

// WatchRef registers a ref watcher.
func (c *Capabilities) WatchRef(r *reactive.Ref, cb reactive.Callback) reactive.StopFunc {
	return c.scope.WatchRef(r, cb)
}

// Untracked runs fn without recording dependencies.
func (c *Capabilities) Untracked(fn func()) {
	c.scope.Untracked(fn)
}

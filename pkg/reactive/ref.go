package reactive

// Ref is a mutable single-value cell. Reads of the value are tracked and
// writes notify subscribers exactly like an object property.
//
// A Ref is distinguished from plain values by its type, so IsRef can never
// be fooled by user data.
type Ref struct {
	scope    *Scope
	id       uint64
	value    any
	dep      dep
	onChange func()
}

// IsRef reports whether v is a ref cell. It never panics; nil and plain
// values report false.
func IsRef(v any) bool {
	r, ok := v.(*Ref)
	return ok && r != nil
}

// ID returns the unique identifier for this ref.
func (r *Ref) ID() uint64 {
	return r.id
}

// Value returns the current value and subscribes the evaluating watcher.
func (r *Ref) Value() any {
	r.scope.tracker.track(&r.dep)
	return r.value
}

// Peek returns the current value without subscribing.
func (r *Ref) Peek() any {
	return r.value
}

// Set stores v, calls the change hook (even when v equals the current value)
// and re-runs the subscribed watchers before returning.
func (r *Ref) Set(v any) {
	r.value = r.scope.convert(v, r.onChange, nil)

	r.scope.observeWrite(KindRef)
	if r.onChange != nil {
		r.onChange()
	}
	r.dep.notify()
}

// Update reads the current value untracked, applies fn and stores the result.
func (r *Ref) Update(fn func(any) any) {
	r.Set(fn(r.value))
}

// Subscribers returns the number of watchers subscribed to the value.
func (r *Ref) Subscribers() int {
	return r.dep.size()
}

package reactive

import "sort"

// Object is a reactive record. Reads through Get are tracked per key and
// writes through Set notify the watchers subscribed to that key.
//
// Nested records are themselves *Object values; refs stored in a field are
// unwrapped by Get and written through by Set.
type Object struct {
	scope    *Scope
	id       uint64
	fields   map[string]any
	deps     map[string]*dep
	onChange func()
}

// ID returns the unique identifier for this object.
func (o *Object) ID() uint64 {
	return o.id
}

// Get returns the value stored under key, subscribing the evaluating watcher
// to that key. A ref stored under key is unwrapped, which also subscribes to
// the ref itself.
func (o *Object) Get(key string) any {
	o.track(key)

	v := o.fields[key]
	if r, ok := v.(*Ref); ok {
		return r.Value()
	}
	return v
}

// Has reports whether key is present. It is tracked like Get.
func (o *Object) Has(key string) bool {
	o.track(key)
	_, ok := o.fields[key]
	return ok
}

// Raw returns the slot stored under key without unwrapping refs and without
// tracking.
func (o *Object) Raw(key string) any {
	return o.fields[key]
}

// Set stores value under key. If the slot holds a ref, the value is written
// through it. The change hook is always called, then every watcher subscribed
// to key re-runs before Set returns.
func (o *Object) Set(key string, value any) {
	cur := o.fields[key]
	if r, ok := cur.(*Ref); ok && !IsRef(value) {
		r.Set(value)
	} else {
		o.fields[key] = o.scope.convert(value, o.onChange, nil)
	}

	o.changed(key)
}

// Delete removes key. It notifies like Set.
func (o *Object) Delete(key string) {
	if _, ok := o.fields[key]; !ok {
		return
	}
	delete(o.fields, key)

	o.changed(key)
}

// Keys returns the keys in sorted order. It is not tracked.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys. It is not tracked.
func (o *Object) Len() int {
	return len(o.fields)
}

// Subscribers returns the number of watchers subscribed to key.
func (o *Object) Subscribers(key string) int {
	return o.deps[key].size()
}

// Snapshot returns a deep plain copy: nested objects become maps and refs
// are replaced by their values. Shared and cyclic structure is preserved.
// Reads are not tracked.
func (o *Object) Snapshot() map[string]any {
	return o.snapshot(make(map[*Object]map[string]any))
}

func (o *Object) snapshot(seen map[*Object]map[string]any) map[string]any {
	if m, ok := seen[o]; ok {
		return m
	}
	out := make(map[string]any, len(o.fields))
	seen[o] = out

	for k, v := range o.fields {
		out[k] = plain(v, seen)
	}
	return out
}

func plain(v any, seen map[*Object]map[string]any) any {
	switch x := v.(type) {
	case *Object:
		return x.snapshot(seen)
	case *Ref:
		return plain(x.value, seen)
	default:
		return v
	}
}

func (o *Object) track(key string) {
	if !o.scope.tracker.active() {
		return
	}
	if o.deps == nil {
		o.deps = make(map[string]*dep)
	}
	d, ok := o.deps[key]
	if !ok {
		d = &dep{}
		o.deps[key] = d
	}
	o.scope.tracker.track(d)
}

func (o *Object) changed(key string) {
	o.scope.observeWrite(KindObject)
	if o.onChange != nil {
		o.onChange()
	}
	o.deps[key].notify()
}

// GetAs returns o.Get(key) as a T, or the zero value if the stored value has a
// different type.
func GetAs[T any](o *Object, key string) T {
	v, _ := o.Get(key).(T)
	return v
}

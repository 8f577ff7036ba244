package host

// Trigger forces a re-render of the component that created it. Its token
// changes on every Fire, so it can key memoized values.
type Trigger struct {
	owner *Owner
	token uint64
}

// Fire bumps the token and requests a re-render. The render happens on the
// scheduler's next Flush, not during Fire.
func (t *Trigger) Fire() {
	if t.owner.disposed {
		return
	}
	t.token++
	t.owner.RequestUpdate()
}

// Token returns a value that changes every time the trigger fires.
func (t *Trigger) Token() uint64 {
	return t.token
}

// UseForceUpdate returns the component's trigger for this hook slot. The same
// *Trigger is returned on every render.
func UseForceUpdate(o *Owner) *Trigger {
	o.TrackHook(HookForceUpdate)

	if slot := o.UseHookSlot(); slot != nil {
		return slot.(*Trigger)
	}
	t := &Trigger{owner: o}
	o.SetHookSlot(t)
	return t
}

type memoSlot[T any] struct {
	deps  []any
	value T
}

// UseMemo returns the value computed by compute, recomputing only on the
// first render and when any of deps differs (by ==) from the previous render.
// Deps must be comparable. compute must not call hooks.
func UseMemo[T any](o *Owner, compute func() T, deps ...any) T {
	o.TrackHook(HookMemo)

	if slot := o.UseHookSlot(); slot != nil {
		m := slot.(*memoSlot[T])
		if depsChanged(m.deps, deps) {
			m.deps = deps
			m.value = compute()
		}
		return m.value
	}

	m := &memoSlot[T]{deps: deps}
	o.SetHookSlot(m)
	m.value = compute()
	return m.value
}

func depsChanged(prev, next []any) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i] != next[i] {
			return true
		}
	}
	return false
}

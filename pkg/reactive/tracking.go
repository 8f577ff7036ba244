package reactive

// tracker links property reads to the watcher currently being evaluated.
// Each Scope owns one; reads made outside an evaluation window link nothing.
type tracker struct {
	// current is the watcher whose expression is running, nil when idle.
	current *watcher
}

// active reports whether a read right now would create a subscription.
func (t *tracker) active() bool {
	return t.current != nil
}

// track subscribes the current watcher to d and records the edge on the
// watcher so that stopping it can remove the subscription again. A watcher
// that stopped itself mid evaluation links nothing further.
func (t *tracker) track(d *dep) {
	w := t.current
	if w == nil || w.stopped {
		return
	}
	if d.subscribe(w) {
		w.deps = append(w.deps, d)
	}
}

// run evaluates fn with w as the current watcher and restores the previous
// one afterwards, so watchers registered inside another watcher's evaluation
// track their own reads.
func (t *tracker) run(w *watcher, fn func()) {
	prev := t.current
	t.current = w
	defer func() { t.current = prev }()
	fn()
}

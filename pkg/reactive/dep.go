package reactive

// dep is the subscriber set of a single property (an object key or a ref's
// value). Subscribers are kept in subscription order and deduplicated by
// watcher identity.
type dep struct {
	subs []*watcher
}

// subscribe adds w and reports whether it was not subscribed yet.
func (d *dep) subscribe(w *watcher) bool {
	for _, existing := range d.subs {
		if existing == w {
			return false
		}
	}
	d.subs = append(d.subs, w)
	return true
}

// unsubscribe removes w, preserving the order of the others.
func (d *dep) unsubscribe(w *watcher) {
	for i, existing := range d.subs {
		if existing == w {
			d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
			return
		}
	}
}

// notify re-runs every subscriber. The subscriber list is copied first:
// watchers re-track (and may stop) while the round is in progress.
func (d *dep) notify() {
	if d == nil || len(d.subs) == 0 {
		return
	}
	subs := make([]*watcher, len(d.subs))
	copy(subs, d.subs)

	for _, w := range subs {
		w.trigger()
	}
}

// size returns the number of subscribers.
func (d *dep) size() int {
	if d == nil {
		return 0
	}
	return len(d.subs)
}

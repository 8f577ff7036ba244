package reactive

import "fmt"

// Form identifies how a watcher was registered.
type Form uint8

const (
	FormEffect Form = iota + 1
	FormGetter
	FormRef
)

// String returns a human-readable name for the form.
func (f Form) String() string {
	switch f {
	case FormEffect:
		return "effect"
	case FormGetter:
		return "getter"
	case FormRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Callback receives the freshly evaluated value and the value observed on
// the previous evaluation (nil on the registration call).
type Callback func(value, prev any)

// StopFunc removes every subscription of a watcher. Calling it again is a
// no-op.
type StopFunc func()

// watcher is a registered expression plus its current subscriptions.
type watcher struct {
	id    uint64
	scope *Scope
	form  Form

	effect   func()
	getter   func() any
	callback Callback

	// value is the result of the most recent getter evaluation.
	value any

	// deps are the properties read during the most recent evaluation.
	deps []*dep

	stopped bool
}

// evaluate drops the previous subscriptions and runs the expression with
// tracking enabled, so deps always reflect the latest run.
func (w *watcher) evaluate() {
	w.clearDeps()

	w.scope.tracker.run(w, func() {
		if w.form == FormEffect {
			w.effect()
			return
		}
		w.value = w.getter()
	})
}

// trigger re-runs the watcher after one of its dependencies changed.
func (w *watcher) trigger() {
	if w.stopped {
		return
	}
	if w.scope.observer != nil {
		w.scope.observer.ObserveWatcherRun(w.form)
	}

	prev := w.value
	w.evaluate()

	// The expression may have stopped its own watcher.
	if w.form != FormEffect && !w.stopped && w.callback != nil {
		w.callback(w.value, prev)
	}
}

func (w *watcher) stop() {
	if w.stopped {
		return
	}
	w.stopped = true
	w.clearDeps()

	w.scope.watchers--
	if w.scope.observer != nil {
		w.scope.observer.ObserveWatcherStop(w.form)
	}
	w.scope.logger.Debug("watcher stopped", "scope", w.scope.id, "watcher", w.id, "form", w.form.String())

	if w.scope.onStop != nil {
		w.scope.onStop(w.id)
	}
}

func (w *watcher) clearDeps() {
	for _, d := range w.deps {
		d.unsubscribe(w)
	}
	w.deps = w.deps[:0]
}

// WatchEffect runs fn immediately and again whenever a property it read
// during its latest run is written.
func (s *Scope) WatchEffect(fn func()) StopFunc {
	return s.register(&watcher{form: FormEffect, effect: fn})
}

// WatchGetter evaluates getter immediately and calls cb(value, nil). On every
// later write to a property read by getter, getter is evaluated again and cb
// receives the new value and the previously observed one.
func (s *Scope) WatchGetter(getter func() any, cb Callback) StopFunc {
	return s.register(&watcher{form: FormGetter, getter: getter, callback: cb})
}

// WatchRef is WatchGetter with r.Value as the getter.
func (s *Scope) WatchRef(r *Ref, cb Callback) StopFunc {
	return s.register(&watcher{form: FormRef, getter: r.Value, callback: cb})
}

// Watch dispatches on the type of source:
//
//   - func() with a nil cb: an effect, see WatchEffect
//   - func() any: a getter, see WatchGetter; with a nil cb it is run as an effect
//   - *Ref: see WatchRef; cb is required
//
// Any other source returns ErrInvalidSource.
func (s *Scope) Watch(source any, cb Callback) (StopFunc, error) {
	switch src := source.(type) {
	case *Ref:
		if src == nil {
			return nil, fmt.Errorf("%w: nil ref", ErrInvalidSource)
		}
		if cb == nil {
			return nil, ErrMissingCallback
		}
		return s.WatchRef(src, cb), nil
	case func() any:
		if src == nil {
			return nil, fmt.Errorf("%w: nil getter", ErrInvalidSource)
		}
		if cb == nil {
			return s.WatchEffect(func() { src() }), nil
		}
		return s.WatchGetter(src, cb), nil
	case func():
		if src == nil {
			return nil, fmt.Errorf("%w: nil effect", ErrInvalidSource)
		}
		if cb != nil {
			return nil, fmt.Errorf("%w: effect function cannot take a callback", ErrInvalidSource)
		}
		return s.WatchEffect(src), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidSource, source)
	}
}

// register runs the first evaluation and publishes the stop function.
func (s *Scope) register(w *watcher) StopFunc {
	w.id = nextID()
	w.scope = s

	s.watchers++
	if s.observer != nil {
		s.observer.ObserveWatcherStart(w.form)
	}
	s.logger.Debug("watcher registered", "scope", s.id, "watcher", w.id, "form", w.form.String())

	stop := StopFunc(w.stop)
	if s.onWatch != nil {
		s.onWatch(w.id, stop)
	}

	w.evaluate()
	if w.form != FormEffect && !w.stopped && w.callback != nil {
		w.callback(w.value, nil)
	}

	return stop
}

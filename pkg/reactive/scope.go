package reactive

import (
	"log/slog"
	"reflect"
)

// Kind identifies what was written.
type Kind uint8

const (
	KindObject Kind = iota + 1
	KindRef
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Observer receives reactive activity, typically to export metrics.
// Implementations must be cheap; they run inline with every write.
type Observer interface {
	ObserveWrite(kind Kind)
	ObserveWatcherStart(form Form)
	ObserveWatcherRun(form Form)
	ObserveWatcherStop(form Form)
}

// Scope owns the dependency tracker shared by every Object, Ref and watcher it
// creates. Values from different scopes never track each other.
type Scope struct {
	id      uint64
	tracker tracker

	// onReactiveChange is called after every write into an Object made by
	// Reactive; onRefChange after every write into a Ref made by Ref.
	onReactiveChange func()
	onRefChange      func()

	// onWatch receives the id and stop function of every registered watcher;
	// onStop receives the id once that watcher stops.
	onWatch func(uint64, StopFunc)
	onStop  func(uint64)

	watchers int

	logger   *slog.Logger
	observer Observer
}

// Option configures a Scope.
type Option func(*Scope)

// WithLogger sets the logger used for debug records. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scope) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver sets the activity observer.
func WithObserver(o Observer) Option {
	return func(s *Scope) {
		s.observer = o
	}
}

// WithReactiveChange sets the hook called after each write into state created
// by Reactive. The composition layer uses it to request a host re-render.
func WithReactiveChange(fn func()) Option {
	return func(s *Scope) {
		s.onReactiveChange = fn
	}
}

// WithRefChange sets the hook called after each write into a Ref created by
// Ref.
func WithRefChange(fn func()) Option {
	return func(s *Scope) {
		s.onRefChange = fn
	}
}

// OnWatch sets a hook that receives the id and stop function of every watcher
// registered on the scope.
func OnWatch(fn func(id uint64, stop StopFunc)) Option {
	return func(s *Scope) {
		s.onWatch = fn
	}
}

// OnStop sets a hook called with the id of each watcher when it stops, by its
// own StopFunc or through the one handed to OnWatch.
func OnStop(fn func(id uint64)) Option {
	return func(s *Scope) {
		s.onStop = fn
	}
}

// NewScope creates an independent reactive scope.
func NewScope(opts ...Option) *Scope {
	s := &Scope{
		id:     nextID(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Watchers returns the number of watchers registered and not yet stopped.
func (s *Scope) Watchers() int {
	return s.watchers
}

// Reactive returns a deep reactive copy of obj. The input map is cloned on
// every call and never mutated, so each call yields a new *Object reflecting
// the current contents of obj. Within one call, a map reached more than once
// converts to a single *Object.
//
// Reactive panics with a *TargetError if obj is nil.
func (s *Scope) Reactive(obj map[string]any) *Object {
	if obj == nil {
		panic(&TargetError{})
	}
	return s.wrap(obj, s.onReactiveChange, make(walk))
}

// Ref returns a new ref cell holding value. A map[string]any value is
// converted to an *Object first.
func (s *Scope) Ref(value any) *Ref {
	r := &Ref{
		scope:    s,
		id:       nextID(),
		onChange: s.onRefChange,
	}
	r.value = s.convert(value, r.onChange, nil)
	return r
}

// Untracked runs fn without recording any dependency, even inside a watcher.
func (s *Scope) Untracked(fn func()) {
	s.tracker.run(nil, fn)
}

// walk maps source maps to the objects made from them during one conversion.
type walk map[uintptr]*Object

// wrap converts m into an *Object. The entry is recorded in seen before the
// fields are converted so shared maps convert once and cycles terminate.
func (s *Scope) wrap(m map[string]any, onChange func(), seen walk) *Object {
	key := reflect.ValueOf(m).Pointer()
	if o, ok := seen[key]; ok {
		return o
	}

	o := &Object{
		scope:    s,
		id:       nextID(),
		fields:   make(map[string]any, len(m)),
		onChange: onChange,
	}
	seen[key] = o

	for k, v := range m {
		o.fields[k] = s.convert(v, onChange, seen)
	}
	return o
}

// convert returns the value to store in a slot: plain maps become objects,
// everything else (including *Object and *Ref) is stored as is. A nil map is a
// plain nil value, not a container. A nil seen starts a new conversion.
func (s *Scope) convert(v any, onChange func(), seen walk) any {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return v
	}
	if seen == nil {
		seen = make(walk)
	}
	return s.wrap(m, onChange, seen)
}

func (s *Scope) observeWrite(kind Kind) {
	if s.observer != nil {
		s.observer.ObserveWrite(kind)
	}
}

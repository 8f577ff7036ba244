package compose

import (
	"log/slog"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/compose/pkg/host"
	"github.com/vango-dev/compose/pkg/reactive"
)

const defaultTracerName = "compose"

// Trigger names reported to Observer.ObserveUpdateRequest.
const (
	TriggerReactive = "reactive"
	TriggerRef      = "ref"
)

// Observer receives composition activity in addition to reactive activity.
type Observer interface {
	reactive.Observer
	ObserveUpdateRequest(trigger string)
	ObserveSetup(d time.Duration)
}

type config struct {
	name     string
	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer
}

// Option configures Use. Options are read when setup runs.
type Option func(*config)

// WithName names the component in logs and spans.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerName resolves the setup tracer from the global provider.
func WithTracerName(name string) Option {
	return func(c *config) {
		c.tracer = otel.Tracer(name)
	}
}

// WithObserver reports writes, watcher activity, update requests and setup
// runs to o.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

// instance is the per-component state that outlives setup re-runs.
type instance struct {
	// stops holds the live watchers of the current setup, keyed by id.
	stops map[uint64]reactive.StopFunc
}

func (i *instance) addStop(id uint64, stop reactive.StopFunc) {
	if i.stops == nil {
		i.stops = make(map[uint64]reactive.StopFunc)
	}
	i.stops[id] = stop
}

func (i *instance) removeStop(id uint64) {
	delete(i.stops, id)
}

// dispose stops every watcher registered by this component.
func (i *instance) dispose() {
	stops := i.stops
	i.stops = nil
	for _, stop := range stops {
		stop()
	}
}

type setupResult struct {
	scope  *reactive.Scope
	values Values
}

// Use runs setup once for the component owning o and returns its values with
// top-level refs replaced by their current values. On later renders the same
// values are returned; the unwrapped copy is refreshed whenever a ref created
// by setup is written.
//
// Use is a hook: call it unconditionally, in the same position, on every
// render.
func Use(o *host.Owner, setup SetupFunc, opts ...Option) Values {
	reactiveTrigger := host.UseForceUpdate(o)
	refTrigger := host.UseForceUpdate(o)

	inst := host.UseMemo(o, func() *instance {
		inst := &instance{}
		o.OnCleanup(inst.dispose)
		return inst
	})

	result := host.UseMemo(o, func() *setupResult {
		cfg := config{
			logger: slog.Default(),
			tracer: otel.Tracer(defaultTracerName),
		}
		for _, opt := range opts {
			opt(&cfg)
		}
		return inst.run(o, setup, reactiveTrigger, refTrigger, cfg)
	}, setupKey(setup), reactiveTrigger, refTrigger)

	return host.UseMemo(o, func() Values {
		return unwrap(result.values)
	}, result, refTrigger.Token())
}

// run executes setup with fresh capabilities. Watchers from a previous setup
// are stopped first.
func (i *instance) run(o *host.Owner, setup SetupFunc, reactiveTrigger, refTrigger *host.Trigger, cfg config) *setupResult {
	i.dispose()

	obs := cfg.observer
	onChange := func(trigger string, t *host.Trigger) func() {
		return func() {
			if obs != nil {
				obs.ObserveUpdateRequest(trigger)
			}
			t.Fire()
		}
	}

	scopeOpts := []reactive.Option{
		reactive.WithLogger(cfg.logger),
		reactive.WithReactiveChange(onChange(TriggerReactive, reactiveTrigger)),
		reactive.WithRefChange(onChange(TriggerRef, refTrigger)),
		reactive.OnWatch(i.addStop),
		reactive.OnStop(i.removeStop),
	}
	if obs != nil {
		scopeOpts = append(scopeOpts, reactive.WithObserver(obs))
	}
	scope := reactive.NewScope(scopeOpts...)

	_, span := cfg.tracer.Start(o.Context(), "compose.setup",
		trace.WithAttributes(
			attribute.String("compose.component", cfg.name),
			attribute.Int64("compose.owner_id", int64(o.ID())),
		))
	defer span.End()

	start := time.Now()
	values := setup(&Capabilities{scope: scope})
	elapsed := time.Since(start)

	if values == nil {
		values = Values{}
	}
	if obs != nil {
		obs.ObserveSetup(elapsed)
	}

	span.SetAttributes(
		attribute.Int("compose.values", len(values)),
		attribute.Int("compose.watchers", scope.Watchers()),
	)
	cfg.logger.Debug("setup complete",
		"component", cfg.name,
		"owner", o.ID(),
		"values", len(values),
		"watchers", scope.Watchers(),
		"duration", elapsed)

	return &setupResult{scope: scope, values: values}
}

// setupKey identifies a setup function by its code pointer.
func setupKey(setup SetupFunc) uintptr {
	return reflect.ValueOf(setup).Pointer()
}

// unwrap returns a shallow copy of values with every ref replaced by its
// current value. Reads are not tracked.
func unwrap(values Values) Values {
	out := make(Values, len(values))
	for k, v := range values {
		for reactive.IsRef(v) {
			v = v.(*reactive.Ref).Peek()
		}
		out[k] = v
	}
	return out
}

// Package examples contains the demo counter components used by the compose
// command: a reactive counter, a ref counter and a counter with watchers.
package examples

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vango-dev/compose/pkg/compose"
	"github.com/vango-dev/compose/pkg/host"
	"github.com/vango-dev/compose/pkg/reactive"
)

// ErrUnknownAction is returned by Dispatch for a value that is not a func().
var ErrUnknownAction = errors.New("examples: unknown action")

// WatchStopAt is the count at which the watch example stops its effect watcher.
const WatchStopAt = 5

// Example is a component definition: a setup function and a render function
// over the values setup returns.
type Example struct {
	Name   string
	Title  string
	Setup  compose.SetupFunc
	Render func(values compose.Values) string
}

// Reactive counts clicks in a reactive record.
func Reactive() Example {
	return Example{
		Name:  "reactive",
		Title: "Reactive Example",
		Setup: func(c *compose.Capabilities) compose.Values {
			state := c.Reactive(map[string]any{"count": 0})
			return compose.Values{
				"state": state,
				"increment": func() {
					state.Set("count", reactive.GetAs[int](state, "count")+1)
				},
			}
		},
		Render: func(values compose.Values) string {
			state := values["state"].(*reactive.Object)
			return fmt.Sprintf("Count is: %v", state.Get("count"))
		},
	}
}

// Ref counts clicks in a ref. The rendered count is the unwrapped value.
func Ref() Example {
	return Example{
		Name:  "ref",
		Title: "Ref Example",
		Setup: func(c *compose.Capabilities) compose.Values {
			count := c.Ref(0)
			return compose.Values{
				"count": count,
				"increment": func() {
					count.Set(count.Peek().(int) + 1)
				},
			}
		},
		Render: renderCount,
	}
}

// Watch counts clicks in a ref observed by three watchers, all logging to
// logger: an effect stopped once the count reaches WatchStopAt, a getter
// watcher and a ref watcher.
func Watch(logger *slog.Logger) Example {
	if logger == nil {
		logger = slog.Default()
	}
	return Example{
		Name:  "watch",
		Title: "Watch Example",
		Setup: func(c *compose.Capabilities) compose.Values {
			count := c.Ref(0)

			stop := c.WatchEffect(func() {
				logger.Info("simple watch", "count", count.Value())
			})

			c.WatchGetter(func() any { return count.Value() }, func(v, prev any) {
				logger.Info("getter watch", "count", v, "prev", prev)
			})

			c.WatchRef(count, func(v, prev any) {
				logger.Info("ref watch", "count", v, "prev", prev)
			})

			return compose.Values{
				"count": count,
				"increment": func() {
					count.Set(count.Peek().(int) + 1)
					if count.Peek() == WatchStopAt {
						stop()
					}
				},
			}
		},
		Render: renderCount,
	}
}

func renderCount(values compose.Values) string {
	return fmt.Sprintf("Count is: %v", values["count"])
}

// All returns every example in display order.
func All(logger *slog.Logger) []Example {
	return []Example{Reactive(), Ref(), Watch(logger)}
}

// Lookup returns the example called name.
func Lookup(name string, logger *slog.Logger) (Example, bool) {
	for _, ex := range All(logger) {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}

// Instance is an example mounted on a scheduler.
type Instance struct {
	example Example
	comp    *host.Component
	values  compose.Values
}

// Mount mounts ex on sched and renders it once.
func Mount(ctx context.Context, sched *host.Scheduler, ex Example, opts ...compose.Option) *Instance {
	inst := &Instance{example: ex}
	opts = append([]compose.Option{compose.WithName(ex.Name)}, opts...)
	inst.comp = sched.Mount(ctx, ex.Name, func(o *host.Owner) string {
		inst.values = compose.Use(o, ex.Setup, opts...)
		return ex.Render(inst.values)
	})
	return inst
}

// Name returns the example name.
func (i *Instance) Name() string {
	return i.example.Name
}

// Title returns the example title.
func (i *Instance) Title() string {
	return i.example.Title
}

// Label returns the latest rendered label.
func (i *Instance) Label() string {
	return i.comp.Output()
}

// Component returns the mounted component.
func (i *Instance) Component() *host.Component {
	return i.comp
}

// Values returns the values of the latest render.
func (i *Instance) Values() compose.Values {
	return i.values
}

// Dispatch calls the func() value named action. The component re-renders on
// the next flush of its scheduler.
func (i *Instance) Dispatch(action string) error {
	fn, ok := i.values[action].(func())
	if !ok {
		return fmt.Errorf("%w: %q on %s", ErrUnknownAction, action, i.example.Name)
	}
	fn()
	return nil
}

// Unmount unmounts the component, stopping its watchers.
func (i *Instance) Unmount() {
	i.comp.Unmount()
}

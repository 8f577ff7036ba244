package host

import "context"

// RenderFunc renders a component. Hooks (UseForceUpdate, UseMemo, compose.Use)
// are called on o, in the same order on every render.
type RenderFunc func(o *Owner) string

// Component is a mounted component instance.
type Component struct {
	id     uint64
	name   string
	owner  *Owner
	render RenderFunc
	sched  *Scheduler

	output  string
	renders int
}

// ID returns the unique identifier for this component.
func (c *Component) ID() uint64 {
	return c.id
}

// Name returns the name given at mount.
func (c *Component) Name() string {
	return c.name
}

// Owner returns the component's owner.
func (c *Component) Owner() *Owner {
	return c.owner
}

// Output returns the result of the latest render.
func (c *Component) Output() string {
	return c.output
}

// Renders returns how many times the component has rendered.
func (c *Component) Renders() int {
	return c.renders
}

// Mounted reports whether the component is still mounted.
func (c *Component) Mounted() bool {
	return !c.owner.disposed
}

// Update requests a re-render on the next Flush.
func (c *Component) Update() {
	c.sched.Request(c)
}

// Unmount disposes the component's owner, running its cleanups, and drops
// any pending update.
func (c *Component) Unmount() {
	c.sched.unmount(c)
}

func (c *Component) renderNow(ctx context.Context) {
	o := c.owner
	o.ctx = ctx
	defer func() { o.ctx = nil }()

	o.StartRender()
	out := c.render(o)
	o.EndRender()

	c.output = out
	c.renders++
}

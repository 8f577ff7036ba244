package host

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxPasses bounds the number of render passes in one Flush.
	DefaultMaxPasses = 64

	defaultTracerName = "compose/host"
)

// Scheduler mounts components and renders them. Update requests are queued,
// deduplicated and rendered by Flush.
type Scheduler struct {
	aff    affinity
	logger *slog.Logger
	tracer trace.Tracer

	maxPasses int
	onRender  func(*Component)

	mounted []*Component
	queue   []*Component
	queued  map[uint64]bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracerName resolves the flush tracer from the global provider.
func WithTracerName(name string) Option {
	return func(s *Scheduler) {
		s.tracer = otel.Tracer(name)
	}
}

// WithMaxPasses sets the pass limit of Flush. Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxPasses = n
		}
	}
}

// OnRender sets a function called after every render, including the
// initial render at mount.
func OnRender(fn func(*Component)) Option {
	return func(s *Scheduler) {
		s.onRender = fn
	}
}

// NewScheduler creates a scheduler bound to the calling goroutine.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		aff:       newAffinity(),
		logger:    slog.Default(),
		tracer:    otel.Tracer(defaultTracerName),
		maxPasses: DefaultMaxPasses,
		queued:    make(map[uint64]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount creates a component and renders it once.
func (s *Scheduler) Mount(ctx context.Context, name string, render RenderFunc) *Component {
	s.aff.check("Mount")

	c := &Component{
		id:     nextID(),
		name:   name,
		owner:  NewOwner(nil),
		render: render,
		sched:  s,
	}
	c.owner.requestUpdate = func() { s.Request(c) }
	s.mounted = append(s.mounted, c)

	s.logger.Debug("component mounted", "component", name, "id", c.id)
	s.renderComponent(ctx, c)
	return c
}

// Components returns the mounted components in mount order.
func (s *Scheduler) Components() []*Component {
	out := make([]*Component, len(s.mounted))
	copy(out, s.mounted)
	return out
}

// Request queues c for re-rendering. Repeated requests before the next Flush
// collapse into one render.
func (s *Scheduler) Request(c *Component) {
	s.aff.check("Request")

	if !c.Mounted() || s.queued[c.id] {
		return
	}
	s.queued[c.id] = true
	s.queue = append(s.queue, c)
}

// Pending returns the number of components waiting to render.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Flush renders every queued component. Renders that request further updates
// are handled in additional passes, up to the pass limit. It returns the
// number of renders performed.
func (s *Scheduler) Flush(ctx context.Context) (int, error) {
	s.aff.check("Flush")

	if len(s.queue) == 0 {
		return 0, nil
	}

	ctx, span := s.tracer.Start(ctx, "host.flush",
		trace.WithAttributes(attribute.Int("compose.pending", len(s.queue))))
	defer span.End()

	renders := 0
	for pass := 0; len(s.queue) > 0; pass++ {
		if pass >= s.maxPasses {
			err := fmt.Errorf("%w (%d passes, %d pending)", ErrUpdateStorm, pass, len(s.queue))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Warn("update storm", "passes", pass, "pending", len(s.queue))
			return renders, err
		}

		batch := s.queue
		s.queue = nil
		for _, c := range batch {
			delete(s.queued, c.id)
		}

		for _, c := range batch {
			if !c.Mounted() {
				continue
			}
			s.renderComponent(ctx, c)
			renders++
		}
	}

	span.SetAttributes(attribute.Int("compose.renders", renders))
	s.logger.Debug("flush complete", "renders", renders)
	return renders, nil
}

func (s *Scheduler) renderComponent(ctx context.Context, c *Component) {
	c.renderNow(ctx)
	if s.onRender != nil {
		s.onRender(c)
	}
}

func (s *Scheduler) unmount(c *Component) {
	s.aff.check("Unmount")

	if !c.Mounted() {
		return
	}
	c.owner.Dispose()

	for i, m := range s.mounted {
		if m == c {
			s.mounted = append(s.mounted[:i], s.mounted[i+1:]...)
			break
		}
	}
	if s.queued[c.id] {
		delete(s.queued, c.id)
		for i, q := range s.queue {
			if q == c {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				break
			}
		}
	}
	s.logger.Debug("component unmounted", "component", c.name, "id", c.id)
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ierrors "github.com/vango-dev/compose/internal/errors"
	"github.com/vango-dev/compose/internal/examples"
	"github.com/vango-dev/compose/pkg/compose"
	"github.com/vango-dev/compose/pkg/host"
)

// maxMessageSize bounds client messages.
const maxMessageSize = 4096

// Message is a client request.
type Message struct {
	Component string `json:"component"`
	Action    string `json:"action"`
}

// ComponentState is the rendered state of one component.
type ComponentState struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Label string `json:"label"`
}

// Reply is a server message.
type Reply struct {
	Type       string           `json:"type"`
	Session    string           `json:"session"`
	Components []ComponentState `json:"components,omitempty"`
	Error      json.RawMessage  `json:"error,omitempty"`
}

// Session is one live connection with its own component instances.
type Session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	logger *slog.Logger

	closeOnce sync.Once

	// Owned by the serving goroutine.
	sched     *host.Scheduler
	instances []*examples.Instance
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		server: s,
		conn:   conn,
		logger: s.logger.With("session", id),
	}
}

// ID returns the session identifier.
func (sess *Session) ID() string {
	return sess.id
}

// serve mounts the components and handles messages until the connection
// closes. It must run on a single goroutine; the scheduler is bound to it.
func (sess *Session) serve(ctx context.Context) {
	defer sess.close()

	sess.mount(ctx)
	defer sess.unmount()

	if err := sess.sendState(); err != nil {
		sess.logger.Debug("initial state not sent", "error", err)
		return
	}

	sess.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read error", "error", err)
			}
			return
		}

		if cerr := sess.handle(ctx, data); cerr != nil {
			sess.logger.Warn("message rejected", "code", cerr.Code, "error", cerr.FormatCompact())
			if err := sess.sendError(cerr); err != nil {
				return
			}
			continue
		}
		if err := sess.sendState(); err != nil {
			return
		}
	}
}

func (sess *Session) mount(ctx context.Context) {
	cfg := sess.server.cfg
	collector := sess.server.collector

	schedOpts := []host.Option{
		host.WithLogger(sess.logger),
		host.WithMaxPasses(cfg.Host.MaxPasses),
	}
	composeOpts := []compose.Option{compose.WithLogger(sess.logger)}
	if collector != nil {
		schedOpts = append(schedOpts, host.OnRender(func(c *host.Component) {
			collector.RecordRender(c.Name())
		}))
		composeOpts = append(composeOpts, compose.WithObserver(collector))
	}

	sess.sched = host.NewScheduler(schedOpts...)
	for _, name := range cfg.Demo.Components {
		ex, ok := examples.Lookup(name, sess.logger)
		if !ok {
			continue
		}
		sess.instances = append(sess.instances, examples.Mount(ctx, sess.sched, ex, composeOpts...))
	}
}

func (sess *Session) unmount() {
	for _, inst := range sess.instances {
		inst.Unmount()
	}
	sess.instances = nil
}

// handle runs one client message and flushes the scheduler.
func (sess *Session) handle(ctx context.Context, data []byte) (cerr *ierrors.Error) {
	var msg Message
	err := json.Unmarshal(data, &msg)

	ctx, span := sess.server.tracer.Start(ctx, "compose.message",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("compose.session_id", sess.id),
			attribute.String("compose.component", msg.Component),
			attribute.String("compose.action", msg.Action),
		))
	defer func() {
		if cerr != nil {
			span.RecordError(cerr)
			span.SetStatus(codes.Error, cerr.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	// Runs before the span is ended so panics are recorded on it.
	defer func() {
		if r := recover(); r != nil {
			sess.logger.Error("panic handling message", "panic", r)
			cerr = ierrors.Recover(r)
		}
	}()

	if err != nil || msg.Component == "" || msg.Action == "" {
		e := ierrors.New("E160")
		if err != nil {
			e = e.Wrap(err)
		}
		return e
	}

	inst := sess.instance(msg.Component)
	if inst == nil {
		return ierrors.New("E161").
			WithDetail("No component " + strconv.Quote(msg.Component) + " in this session")
	}

	if err := inst.Dispatch(msg.Action); err != nil {
		if errors.Is(err, examples.ErrUnknownAction) {
			return ierrors.New("E162").
				WithDetail("Component " + strconv.Quote(msg.Component) + " has no action " + strconv.Quote(msg.Action)).
				Wrap(err)
		}
		return ierrors.FromError(err, "E160")
	}

	if _, err := sess.sched.Flush(ctx); err != nil {
		return ierrors.New("E105").Wrap(err)
	}
	return nil
}

func (sess *Session) instance(name string) *examples.Instance {
	for _, inst := range sess.instances {
		if inst.Name() == name {
			return inst
		}
	}
	return nil
}

func (sess *Session) state() []ComponentState {
	out := make([]ComponentState, 0, len(sess.instances))
	for _, inst := range sess.instances {
		out = append(out, ComponentState{
			Name:  inst.Name(),
			Title: inst.Title(),
			Label: inst.Label(),
		})
	}
	return out
}

func (sess *Session) sendState() error {
	return sess.conn.WriteJSON(Reply{
		Type:       "state",
		Session:    sess.id,
		Components: sess.state(),
	})
}

func (sess *Session) sendError(cerr *ierrors.Error) error {
	return sess.conn.WriteJSON(Reply{
		Type:    "error",
		Session: sess.id,
		Error:   json.RawMessage(cerr.FormatJSON()),
	})
}

// close closes the connection. Safe to call from any goroutine.
func (sess *Session) close() {
	sess.closeOnce.Do(func() {
		sess.conn.Close()
	})
}

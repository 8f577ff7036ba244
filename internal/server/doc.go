// Package server serves the example components to browsers.
//
// Every WebSocket connection is a session with its own scheduler and its own
// component instances, so state is never shared between sessions. The
// session's scheduler is pinned to the goroutine serving the connection; all
// messages of a session are handled in order on that goroutine.
//
// Client messages name a component and an action:
//
//	{"component":"watch","action":"increment"}
//
// After the action runs the scheduler is flushed and the server replies with
// the labels of every component:
//
//	{"type":"state","session":"…","components":[{"name":"watch","title":"Watch Example","label":"Count is: 1"}]}
//
// Failed messages are answered with {"type":"error","error":{…}}, where the
// error object is the coded error in JSON form.
//
// Routes:
//   - GET /         the demo page
//   - GET /ws       the live session endpoint
//   - GET /healthz  health and session count
//   - GET /metrics  Prometheus metrics (path configurable, can be disabled)
package server

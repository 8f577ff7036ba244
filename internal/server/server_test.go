package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/compose/internal/config"
	"github.com/vango-dev/compose/internal/server"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*server.Server, *httptest.Server) {
	t.Helper()
	cfg := config.New()
	if mutate != nil {
		mutate(cfg)
	}
	srv := server.New(cfg, server.WithLogger(quietLogger()), server.WithRegistry(prometheus.NewRegistry()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) server.Reply {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply server.Reply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func send(t *testing.T, conn *websocket.Conn, component, action string) server.Reply {
	t.Helper()
	if err := conn.WriteJSON(server.Message{Component: component, Action: action}); err != nil {
		t.Fatalf("write: %v", err)
	}
	return read(t, conn)
}

func labels(reply server.Reply) map[string]string {
	out := make(map[string]string)
	for _, c := range reply.Components {
		out[c.Name] = c.Label
	}
	return out
}

func TestSessionInitialState(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)

	reply := read(t, conn)
	if reply.Type != "state" || reply.Session == "" {
		t.Fatalf("reply = %+v, want state with a session id", reply)
	}
	if len(reply.Components) != 3 {
		t.Fatalf("components = %d, want 3", len(reply.Components))
	}
	for name, label := range labels(reply) {
		if label != "Count is: 0" {
			t.Errorf("%s label = %q, want %q", name, label, "Count is: 0")
		}
	}
}

func TestSessionIncrement(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	read(t, conn)

	send(t, conn, "watch", "increment")
	reply := send(t, conn, "watch", "increment")
	got := labels(reply)
	if got["watch"] != "Count is: 2" {
		t.Errorf("watch label = %q, want %q", got["watch"], "Count is: 2")
	}
	if got["ref"] != "Count is: 0" || got["reactive"] != "Count is: 0" {
		t.Errorf("other labels changed: %v", got)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	a := dial(t, ts)
	b := dial(t, ts)
	first := read(t, a)
	second := read(t, b)

	if first.Session == second.Session {
		t.Fatal("sessions should have distinct ids")
	}

	send(t, a, "reactive", "increment")
	reply := send(t, b, "reactive", "increment")
	if got := labels(reply)["reactive"]; got != "Count is: 1" {
		t.Errorf("second session label = %q, want %q", got, "Count is: 1")
	}
	if srv.SessionCount() != 2 {
		t.Errorf("SessionCount() = %d, want 2", srv.SessionCount())
	}
}

func TestSessionErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	read(t, conn)

	tests := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{"not json", `increment`, "E160"},
		{"missing action", `{"component":"ref"}`, "E160"},
		{"unknown component", `{"component":"clock","action":"increment"}`, "E161"},
		{"unknown action", `{"component":"ref","action":"reset"}`, "E162"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatal(err)
			}
			reply := read(t, conn)
			if reply.Type != "error" {
				t.Fatalf("reply type = %q, want error", reply.Type)
			}
			var body struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(reply.Error, &body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}

	// The session survives rejected messages.
	if got := labels(send(t, conn, "ref", "increment"))["ref"]; got != "Count is: 1" {
		t.Errorf("ref label = %q, want %q", got, "Count is: 1")
	}
}

func TestConfiguredComponents(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.Demo.Components = []string{"ref"}
	})
	conn := dial(t, ts)

	reply := read(t, conn)
	if len(reply.Components) != 1 || reply.Components[0].Name != "ref" {
		t.Errorf("components = %+v, want only ref", reply.Components)
	}
}

func TestPage(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{"Reactive Example", "Ref Example", "Watch Example", `data-component="watch"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Sessions != 0 {
		t.Errorf("healthz = %+v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	read(t, conn)
	send(t, conn, "ref", "increment")

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`compose_writes_total{kind="ref"} 1`,
		`compose_sessions_active 1`,
		`compose_renders_total{component="ref"} 2`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.Metrics.Enabled = false
	})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.New()
	srv := server.New(cfg, server.WithLogger(quietLogger()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "ws://" + ln.Addr().String() + "/ws"
	var conn *websocket.Conn
	for i := 0; i < 50; i++ {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	read(t, conn)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("session connection should be closed after shutdown")
	}
}

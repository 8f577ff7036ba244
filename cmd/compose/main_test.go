package main

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/compose/internal/config"
	"github.com/vango-dev/compose/internal/errors"
	"github.com/vango-dev/compose/internal/examples"
	"github.com/vango-dev/compose/pkg/host"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	stdout, stderr, err := execute(t, "run", "--dir", dir, "--clicks", "6", "--component", "watch")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(stdout, "Watch Example: Count is: 6") {
		t.Errorf("stdout missing final label:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Watch Example: 6 clicks, 7 renders") {
		t.Errorf("stdout missing summary:\n%s", stdout)
	}
	// Registration run plus five clicks; the effect stops at five.
	if got := strings.Count(stderr, `msg="simple watch"`); got != 6 {
		t.Errorf("simple watch lines = %d, want 6\n%s", got, stderr)
	}
	if got := strings.Count(stderr, `msg="ref watch"`); got != 7 {
		t.Errorf("ref watch lines = %d, want 7", got)
	}
}

func TestRunAllComponents(t *testing.T) {
	stdout, _, err := execute(t, "run", "--dir", t.TempDir(), "-n", "2")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{
		"Reactive Example: Count is: 2",
		"Ref Example: Count is: 2",
		"Watch Example: Count is: 2",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunUsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte("demo:\n  clicks: 1\n  components: [ref]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "run", "--config", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, "Ref Example: 1 clicks, 2 renders") {
		t.Errorf("stdout:\n%s", stdout)
	}
	if strings.Contains(stdout, "Watch Example") {
		t.Errorf("watch should not run:\n%s", stdout)
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown component", []string{"run", "--component", "clock"}, "E121"},
		{"negative clicks", []string{"run", "--clicks=-1"}, "E123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--dir", t.TempDir())
			_, _, err := execute(t, args...)
			if err == nil || !strings.Contains(err.Error(), tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestClickThroughUnmountsOnError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sched := host.NewScheduler(host.WithLogger(logger))

	err := clickThrough(context.Background(), io.Discard, sched, examples.Ref(), 3, "decrement", logger)

	var cerr *errors.Error
	if !stderrors.As(err, &cerr) || cerr.Code != "E162" {
		t.Fatalf("clickThrough() error = %v, want E162", err)
	}
	if n := len(sched.Components()); n != 0 {
		t.Errorf("mounted components after error = %d, want 0", n)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, "init", "--dir", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(stdout, config.YAMLFileName) {
		t.Errorf("stdout = %q", stdout)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path() != filepath.Join(dir, config.YAMLFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}

	if _, _, err := execute(t, "init", "--dir", dir); err == nil {
		t.Error("init should refuse to overwrite without --force")
	}
	if _, _, err := execute(t, "init", "--dir", dir, "--format", "json", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
	if _, _, err := execute(t, "init", "--dir", dir, "--format", "toml", "--force"); err == nil {
		t.Error("init should reject an unknown format")
	}
}

func TestVersionCommand(t *testing.T) {
	want := readBuildInfo()

	stdout, _, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != want.Version {
		t.Errorf("version = %q, want %q", stdout, want.Version)
	}

	stdout, _, err = execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "compose "+want.Version+"\n") || !strings.Contains(stdout, want.GoVersion) {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got buildInfo
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("version --json: %v\n%s", err, stdout)
	}
	if got != want {
		t.Errorf("version --json = %+v, want %+v", got, want)
	}
}

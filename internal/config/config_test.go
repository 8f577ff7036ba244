package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/compose/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Demo.Clicks != DefaultClicks {
		t.Errorf("Demo.Clicks = %d, want %d", cfg.Demo.Clicks, DefaultClicks)
	}
	if len(cfg.Demo.Components) != len(KnownComponents) {
		t.Errorf("Demo.Components = %v, want %v", cfg.Demo.Components, KnownComponents)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Host.MaxPasses != DefaultMaxPasses {
		t.Errorf("Host.MaxPasses = %d, want %d", cfg.Host.MaxPasses, DefaultMaxPasses)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}
	if cfg.Address() != "localhost:3000" {
		t.Errorf("Address() = %q, want %q", cfg.Address(), "localhost:3000")
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configJSON := `{
  "name": "counters",
  "server": {"host": "0.0.0.0", "port": 8080},
  "demo": {"clicks": 7, "components": ["watch"]},
  "metrics": {"enabled": false}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, JSONFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "counters" {
		t.Errorf("Name = %q, want %q", cfg.Name, "counters")
	}
	if cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("Address() = %q, want %q", cfg.Address(), "0.0.0.0:8080")
	}
	if cfg.Demo.Clicks != 7 {
		t.Errorf("Demo.Clicks = %d, want 7", cfg.Demo.Clicks)
	}
	if len(cfg.Demo.Components) != 1 || cfg.Demo.Components[0] != "watch" {
		t.Errorf("Demo.Components = %v, want [watch]", cfg.Demo.Components)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	// Untouched sections keep their defaults.
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.ShutdownTimeout() != 5*time.Second {
		t.Errorf("ShutdownTimeout() = %v, want 5s", cfg.ShutdownTimeout())
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `name: counters
debug: true
server:
  port: 9090
  shutdownTimeout: 2s
demo:
  clicks: 0
metrics:
  namespace: demo
host:
  maxPasses: 8
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.Server.Port != 9090 || cfg.Server.Host != DefaultHost {
		t.Errorf("Server = %+v, want port 9090 on %s", cfg.Server, DefaultHost)
	}
	if cfg.Demo.Clicks != 0 {
		t.Errorf("Demo.Clicks = %d, want 0", cfg.Demo.Clicks)
	}
	if cfg.Metrics.Namespace != "demo" || !cfg.Metrics.Enabled {
		t.Errorf("Metrics = %+v, want enabled in namespace demo", cfg.Metrics)
	}
	if cfg.Host.MaxPasses != 8 {
		t.Errorf("Host.MaxPasses = %d, want 8", cfg.Host.MaxPasses)
	}
	if cfg.ShutdownTimeout() != 2*time.Second {
		t.Errorf("ShutdownTimeout() = %v, want 2s", cfg.ShutdownTimeout())
	}
}

func TestLoadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"missing file", "compose.json", "", "E120"},
		{"bad json", "compose.json", "{not json", "E120"},
		{"bad yaml", "compose.yaml", "server: [", "E120"},
		{"unknown extension", "compose.toml", "name = 'x'", "E124"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name, tt.file)
			if tt.content != "" {
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			_, err := LoadFile(path)
			var ce *errors.Error
			if !stderrors.As(err, &ce) {
				t.Fatalf("LoadFile error = %v, want *errors.Error", err)
			}
			if ce.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", ce.Code, tt.wantCode)
			}
		})
	}
}

func TestLoadFileErrorLocation(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantLine int
		wantCol  int
		wantText string
	}{
		{
			name:     "json syntax",
			file:     "compose.json",
			content:  "{\n  \"name\": \"demo\",\n  \"server\": {\n    \"port\": 30oo\n  }\n}\n",
			wantLine: 4,
			wantCol:  15,
			wantText: "30oo",
		},
		{
			name:     "yaml type",
			file:     "compose.yaml",
			content:  "name: demo\nserver:\n  port: abc\n",
			wantLine: 3,
			wantText: "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadFile(path)
			var cerr *errors.Error
			if !stderrors.As(err, &cerr) {
				t.Fatalf("LoadFile() error = %v, want *errors.Error", err)
			}
			if cerr.Location == nil {
				t.Fatal("Location is nil")
			}
			if cerr.Location.File != path || cerr.Location.Line != tt.wantLine || cerr.Location.Column != tt.wantCol {
				t.Errorf("Location = %v, want %s:%d:%d", cerr.Location, path, tt.wantLine, tt.wantCol)
			}

			found := false
			for _, line := range cerr.Context {
				if strings.Contains(line, tt.wantText) {
					found = true
				}
			}
			if !found {
				t.Errorf("Context %q missing %q", cerr.Context, tt.wantText)
			}
			if !strings.HasPrefix(cerr.FormatCompact(), path+":") {
				t.Errorf("FormatCompact() = %q, want location prefix", cerr.FormatCompact())
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COMPOSE_HOST", "127.0.0.1")
	t.Setenv("COMPOSE_PORT", "4000")
	t.Setenv("COMPOSE_DEBUG", "true")
	t.Setenv("COMPOSE_CLICKS", "2")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.URL() != "http://127.0.0.1:4000" {
		t.Errorf("URL() = %q, want %q", cfg.URL(), "http://127.0.0.1:4000")
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.Demo.Clicks != 2 {
		t.Errorf("Demo.Clicks = %d, want 2", cfg.Demo.Clicks)
	}
}

func TestEnvOverrideErrors(t *testing.T) {
	tests := []struct {
		key, value, wantCode string
	}{
		{"COMPOSE_PORT", "http", "E122"},
		{"COMPOSE_DEBUG", "maybe", "E120"},
		{"COMPOSE_CLICKS", "many", "E123"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(t.TempDir())
			var ce *errors.Error
			if !stderrors.As(err, &ce) || ce.Code != tt.wantCode {
				t.Errorf("Load error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "E122"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "E122"},
		{"negative clicks", func(c *Config) { c.Demo.Clicks = -1 }, "E123"},
		{"unknown component", func(c *Config) { c.Demo.Components = []string{"clock"} }, "E121"},
		{"bad timeout", func(c *Config) { c.Server.ShutdownTimeout = "soon" }, "E120"},
		{"no passes", func(c *Config) { c.Host.MaxPasses = 0 }, "E120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			var ce *errors.Error
			if !stderrors.As(err, &ce) {
				t.Fatalf("Validate() = %v, want *errors.Error", err)
			}
			if ce.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", ce.Code, tt.wantCode)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := New()
			cfg.Name = "saved"
			cfg.Demo.Clicks = 3
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile error: %v", err)
			}
			if loaded.Name != "saved" || loaded.Demo.Clicks != 3 {
				t.Errorf("loaded = %+v, want name saved and 3 clicks", loaded)
			}
		})
	}

	err := New().SaveTo(filepath.Join(t.TempDir(), "compose.ini"))
	if err == nil || !strings.Contains(err.Error(), "E124") {
		t.Errorf("SaveTo(.ini) = %v, want E124", err)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()
	if Exists(tmpDir) {
		t.Error("Exists should be false for an empty directory")
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "compose.yml"), []byte("name: x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Error("Exists should find compose.yml")
	}
}

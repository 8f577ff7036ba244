package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/compose/internal/errors"
)

const (
	// JSONFileName is the JSON configuration file name.
	JSONFileName = "compose.json"

	// YAMLFileName is the YAML configuration file name.
	YAMLFileName = "compose.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultClicks is the number of clicks simulated by "compose run".
	DefaultClicks = 5

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "compose"

	// DefaultMetricsPath is the default metrics endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultShutdownTimeout bounds graceful server shutdown.
	DefaultShutdownTimeout = "5s"

	// DefaultMaxPasses bounds the render passes of one scheduler flush.
	DefaultMaxPasses = 64
)

// fileNames lists the configuration files Load looks for, in order.
var fileNames = []string{JSONFileName, YAMLFileName, "compose.yml"}

// KnownComponents lists the example components a configuration may name.
var KnownComponents = []string{"reactive", "ref", "watch"}

// Config is the complete tool configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Debug enables debug logging and host.DebugMode checks.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server" yaml:"server"`

	// Demo contains configuration for the example components.
	Demo DemoConfig `json:"demo" yaml:"demo"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Host contains scheduler configuration.
	Host HostConfig `json:"host" yaml:"host"`

	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// ShutdownTimeout is how long graceful shutdown may take (e.g., "5s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
}

// DemoConfig selects the example components and the simulated clicks.
type DemoConfig struct {
	// Clicks is the number of increments "compose run" sends to each component.
	Clicks int `json:"clicks" yaml:"clicks"`

	// Components lists the mounted example components, in order.
	Components []string `json:"components,omitempty" yaml:"components,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled mounts the metrics endpoint and attaches the collector.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Namespace is the metric name prefix.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Path is the metrics endpoint.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// HostConfig contains scheduler settings.
type HostConfig struct {
	// MaxPasses bounds the render passes of one flush.
	MaxPasses int `json:"maxPasses,omitempty" yaml:"maxPasses,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Name: "compose",
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Demo: DemoConfig{
			Clicks:     DefaultClicks,
			Components: slices.Clone(KnownComponents),
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
			Path:      DefaultMetricsPath,
		},
		Host: HostConfig{
			MaxPasses: DefaultMaxPasses,
		},
	}
}

// Load reads the configuration file in dir. Without a configuration file it
// returns the defaults. Environment overrides are applied in both cases.
func Load(dir string) (*Config, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	cfg := New()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from path. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to read " + path + ": " + err.Error()).
			Wrap(err)
	}

	cfg := New()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, errors.New("E124").
			WithDetail("Unsupported configuration extension " + strconv.Quote(ext)).
			WithSuggestion("Rename the file to " + JSONFileName + " or " + YAMLFileName)
	}
	if err != nil {
		cerr := errors.New("E120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is well formed").
			Wrap(err)
		if line, col := errorPosition(data, err); line > 0 {
			cerr = cerr.WithLocation(path, line, col)
		}
		return nil, cerr
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// errorPosition returns the 1-based line and column a decode error points at.
// YAML errors carry only a line; a zero line means the position is unknown.
func errorPosition(data []byte, err error) (line, col int) {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case stderrors.As(err, &syntaxErr):
		return offsetPosition(data, syntaxErr.Offset)
	case stderrors.As(err, &typeErr):
		return offsetPosition(data, typeErr.Offset)
	}

	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		line, _ = strconv.Atoi(m[1])
	}
	return line, 0
}

// offsetPosition converts a JSON decoder offset, the count of bytes read up to
// and including the offending one, into a line and column.
func offsetPosition(data []byte, offset int64) (line, col int) {
	pos := int(offset) - 1
	if pos < 0 {
		pos = 0
	}
	if pos > len(data) {
		pos = len(data)
	}
	line = 1 + bytes.Count(data[:pos], []byte{'\n'})
	col = pos - bytes.LastIndexByte(data[:pos], '\n')
	return line, col
}

// SaveTo writes the configuration to path in the format its extension names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return errors.New("E124").
			WithDetail("Unsupported configuration extension " + strconv.Quote(ext))
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(c.Demo.Components) == 0 {
		c.Demo.Components = slices.Clone(KnownComponents)
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Host.MaxPasses == 0 {
		c.Host.MaxPasses = DefaultMaxPasses
	}
}

// applyEnv applies COMPOSE_* environment overrides.
func (c *Config) applyEnv() error {
	if v := os.Getenv("COMPOSE_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("COMPOSE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E122").
				WithDetail("COMPOSE_PORT=" + v + " is not a number").
				Wrap(err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("COMPOSE_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("E120").
				WithDetail("COMPOSE_DEBUG=" + v + " is not a boolean").
				Wrap(err)
		}
		c.Debug = debug
	}
	if v := os.Getenv("COMPOSE_CLICKS"); v != "" {
		clicks, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E123").
				WithDetail("COMPOSE_CLICKS=" + v + " is not a number").
				Wrap(err)
		}
		c.Demo.Clicks = clicks
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 1 and 65535, got " + strconv.Itoa(c.Server.Port))
	}
	if c.Demo.Clicks < 0 {
		return errors.New("E123").
			WithDetail("demo.clicks must not be negative, got " + strconv.Itoa(c.Demo.Clicks))
	}
	for _, name := range c.Demo.Components {
		if !slices.Contains(KnownComponents, name) {
			return errors.New("E121").
				WithDetail("Unknown component " + strconv.Quote(name)).
				WithSuggestion("Use one of: " + strings.Join(KnownComponents, ", "))
		}
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return errors.New("E120").
			WithDetail("server.shutdownTimeout " + strconv.Quote(c.Server.ShutdownTimeout) + " is not a duration").
			Wrap(err)
	}
	if c.Host.MaxPasses < 1 {
		return errors.New("E120").
			WithDetail("host.maxPasses must be at least 1")
	}
	return nil
}

// Address returns the host:port address of the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// ShutdownTimeout returns the parsed shutdown timeout, or the default when it
// does not parse.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultShutdownTimeout)
	}
	return d
}

// Exists reports whether dir contains a configuration file.
func Exists(dir string) bool {
	for _, name := range fileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/compose/pkg/reactive"
)

// Config configures the Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "compose").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for setup duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "compose",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the Prometheus metrics. It is safe for concurrent use, so
// one Collector can serve every session of a server.
type Collector struct {
	writes         *prometheus.CounterVec
	updateRequests *prometheus.CounterVec
	watcherRuns    *prometheus.CounterVec
	activeWatchers prometheus.Gauge
	setupRuns      prometheus.Counter
	setupDuration  prometheus.Histogram
	renders        *prometheus.CounterVec
}

// New creates a Collector and registers its metrics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of writes into reactive state",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		updateRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_requests_total",
			Help:        "Total number of component re-render requests",
			ConstLabels: config.ConstLabels,
		}, []string{"trigger"}),

		watcherRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watcher_runs_total",
			Help:        "Total number of watcher runs caused by writes",
			ConstLabels: config.ConstLabels,
		}, []string{"form"}),

		activeWatchers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_watchers",
			Help:        "Number of registered watchers not yet stopped",
			ConstLabels: config.ConstLabels,
		}),

		setupRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "setup_runs_total",
			Help:        "Total number of setup function executions",
			ConstLabels: config.ConstLabels,
		}),

		setupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "setup_duration_seconds",
			Help:        "Setup function execution time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),
	}
}

// ObserveWrite implements reactive.Observer.
func (c *Collector) ObserveWrite(kind reactive.Kind) {
	c.writes.WithLabelValues(kind.String()).Inc()
}

// ObserveWatcherStart implements reactive.Observer.
func (c *Collector) ObserveWatcherStart(reactive.Form) {
	c.activeWatchers.Inc()
}

// ObserveWatcherRun implements reactive.Observer.
func (c *Collector) ObserveWatcherRun(form reactive.Form) {
	c.watcherRuns.WithLabelValues(form.String()).Inc()
}

// ObserveWatcherStop implements reactive.Observer.
func (c *Collector) ObserveWatcherStop(reactive.Form) {
	c.activeWatchers.Dec()
}

// ObserveUpdateRequest implements compose.Observer.
func (c *Collector) ObserveUpdateRequest(trigger string) {
	c.updateRequests.WithLabelValues(trigger).Inc()
}

// ObserveSetup implements compose.Observer.
func (c *Collector) ObserveSetup(d time.Duration) {
	c.setupRuns.Inc()
	c.setupDuration.Observe(d.Seconds())
}

// RecordRender counts a component render. Pass it to host.OnRender via a
// closure over the component name.
func (c *Collector) RecordRender(component string) {
	c.renders.WithLabelValues(component).Inc()
}

// Package metrics exports reactive and composition activity to Prometheus.
//
// A Collector implements compose.Observer, so it can be passed to
// compose.WithObserver (or reactive.WithObserver for a bare scope):
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace("myapp"))
//	values := compose.Use(owner, setup, compose.WithObserver(m))
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Metrics collected:
//   - compose_writes_total: writes by kind (object, ref)
//   - compose_update_requests_total: re-render requests by trigger (reactive, ref)
//   - compose_watcher_runs_total: notified watcher runs by form
//   - compose_active_watchers: registered and not yet stopped watchers
//   - compose_setup_runs_total: setup executions
//   - compose_setup_duration_seconds: setup execution time
//   - compose_renders_total: component renders by component name
package metrics

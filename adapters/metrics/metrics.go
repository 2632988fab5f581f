// Package metrics provides Prometheus metrics collection for the
// configuration service.
package metrics

import (
	"strconv"
	"time"

	"github.com/artpar/agencms/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agencms"

// Collector holds all Prometheus metrics.
type Collector struct {
	// HTTP metrics
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	AuthFailures     *prometheus.CounterVec

	// Config document metrics
	ConfigRequests *prometheus.CounterVec
	BuildDuration  prometheus.Histogram
	Routes         prometheus.Gauge
	Plugins        prometheus.Gauge
	AppendFailures *prometheus.CounterVec
	PluginErrors   *prometheus.CounterVec

	// Permission metrics
	PermissionChecks *prometheus.CounterVec

	// Definitions metrics
	DefinitionsReloads    *prometheus.CounterVec
	DefinitionsLastReload prometheus.Gauge
}

// NewWithRegistry creates a new metrics collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total number of authentication failures",
			},
			[]string{"reason"},
		),
		ConfigRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_requests_total",
				Help:      "Total number of configuration documents built",
			},
			[]string{"status"},
		),
		BuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "config_build_duration_seconds",
				Help:      "Time spent building a configuration document",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		Routes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registered_routes",
				Help:      "Number of routes registered at bootstrap",
			},
		),
		Plugins: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registered_plugins",
				Help:      "Number of registered plugins",
			},
		),
		AppendFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "append_failures_total",
				Help:      "Appends onto a route that is not registered",
			},
			[]string{"slug"},
		),
		PluginErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plugin_errors_total",
				Help:      "Plugin contributions that failed and were discarded",
			},
			[]string{"plugin"},
		),
		PermissionChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "permission_checks_total",
				Help:      "Permission checks by outcome",
			},
			[]string{"permission", "result"},
		),
		DefinitionsReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "definitions_reloads_total",
				Help:      "Route definition reloads by outcome",
			},
			[]string{"result"},
		),
		DefinitionsLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "definitions_last_reload_timestamp",
				Help:      "Unix timestamp of the last successful definitions reload",
			},
		),
	}
}

// ConfigServed records a built configuration document.
func (c *Collector) ConfigServed(status string, d time.Duration) {
	c.ConfigRequests.WithLabelValues(status).Inc()
	c.BuildDuration.Observe(d.Seconds())
}

// AppendFailed records an append onto a missing route.
func (c *Collector) AppendFailed(slug string) {
	c.AppendFailures.WithLabelValues(slug).Inc()
}

// PluginFailed records a discarded plugin contribution.
func (c *Collector) PluginFailed(plugin string) {
	c.PluginErrors.WithLabelValues(plugin).Inc()
}

// PermissionChecked records a permission check.
func (c *Collector) PermissionChecked(permission string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	c.PermissionChecks.WithLabelValues(permission, result).Inc()
}

// DefinitionsReloaded records a definitions reload.
func (c *Collector) DefinitionsReloaded(ok bool) {
	if !ok {
		c.DefinitionsReloads.WithLabelValues("error").Inc()
		return
	}
	c.DefinitionsReloads.WithLabelValues("ok").Inc()
	c.DefinitionsLastReload.SetToCurrentTime()
}

// SetRegistered sets the registry gauges.
func (c *Collector) SetRegistered(routes, plugins int) {
	c.Routes.Set(float64(routes))
	c.Plugins.Set(float64(plugins))
}

// StatusClass reduces an HTTP status to its class, e.g. 404 becomes "4xx".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Ensure interface compliance.
var _ ports.Metrics = (*Collector)(nil)

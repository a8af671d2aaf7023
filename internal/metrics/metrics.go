// Package metrics exposes Prometheus metrics for the service.
//
// Every method is safe on a nil *Metrics, so components built without
// metrics (tests, tooling) can skip the wiring.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "brightfeed"

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	Toggles        *prometheus.CounterVec
	Reloads        *prometheus.CounterVec
	ReloadDuration prometheus.Histogram
	GCDeleted      prometheus.Counter
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New creates the collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Toggles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmark_toggles_total",
			Help:      "Bookmark toggles by action (added, removed) and outcome.",
		}, []string{"action", "outcome"}),
		Reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_reloads_total",
			Help:      "Upstream listing reloads by result.",
		}, []string{"result"}),
		ReloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "news_reload_duration_seconds",
			Help:      "Time to fetch and index the upstream listing.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		GCDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_gc_deleted_total",
			Help:      "Disabled articles removed by the garbage collector.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gauge registers a gauge whose value is read from fn at scrape time.
func (m *Metrics) Gauge(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// ObserveToggle counts one toggle attempt. action is empty when the toggle
// failed before it was decided.
func (m *Metrics) ObserveToggle(action, outcome string) {
	if m == nil {
		return
	}
	if action == "" {
		action = "none"
	}
	m.Toggles.WithLabelValues(action, outcome).Inc()
}

// ObserveReload records one reload
func (m *Metrics) ObserveReload(err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(result).Inc()
	m.ReloadDuration.Observe(d.Seconds())
}

// ObserveGC adds n collected articles
func (m *Metrics) ObserveGC(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.GCDeleted.Add(float64(n))
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global metrics instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the service
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph build metrics
	GraphBuilds        prometheus.Counter
	GraphBuildDuration prometheus.Histogram

	// Inference and persistence metrics
	ConnectionsInferred  *prometheus.CounterVec
	ConnectionsPersisted prometheus.Counter
	ConnectionConflicts  prometheus.Counter
	PersistenceFailures  prometheus.Counter
	ScanDuration         prometheus.Histogram

	// Upstream source metrics
	SourceFetchFailures *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace.
// A singleton avoids duplicate registration when tests construct the
// stack repeatedly.
func NewCollector(namespace string) *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GraphBuilds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_builds_total",
				Help:      "Total number of graph builds",
			},
		),
		GraphBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_build_duration_seconds",
				Help:      "Graph build duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		ConnectionsInferred: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connections_inferred_total",
				Help:      "Total number of candidate connections inferred",
			},
			[]string{"type"},
		),
		ConnectionsPersisted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connections_persisted_total",
				Help:      "Total number of connections persisted to the backend",
			},
		),
		ConnectionConflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_conflicts_total",
				Help:      "Total number of persistence conflicts (already-existing edges)",
			},
		),
		PersistenceFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_failures_total",
				Help:      "Total number of dropped connection persistence attempts",
			},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Per-note scan pass duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		SourceFetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_fetch_failures_total",
				Help:      "Total number of degraded source fetches",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.GraphBuilds,
		c.GraphBuildDuration,
		c.ConnectionsInferred,
		c.ConnectionsPersisted,
		c.ConnectionConflicts,
		c.PersistenceFailures,
		c.ScanDuration,
		c.SourceFetchFailures,
	)

	globalCollector = c
	return c
}

// Handler returns the HTTP handler exposing this collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

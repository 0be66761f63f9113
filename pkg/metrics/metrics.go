package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobboard_client"

// Metrics groups the client's collectors on a private registry so tests can
// create as many instances as they like. A nil *Metrics is a valid no-op.
type Metrics struct {
	Registry *prometheus.Registry

	syncOps         *prometheus.CounterVec
	collectionSize  *prometheus.GaugeVec
	backendDuration *prometheus.HistogramVec
	notifications   *prometheus.CounterVec
}

// New creates the collectors. If collectProcessMetrics is true, the Go and
// process collectors are registered too.
func New(collectProcessMetrics bool) *Metrics {
	registry := prometheus.NewRegistry()
	if collectProcessMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		Registry: registry,
		syncOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "operations_total",
			Help:      "Collection synchronizer operations by collection, operation and outcome.",
		}, []string{"collection", "op", "outcome"}),
		collectionSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "collection_size",
			Help:      "Number of items currently held by a collection.",
		}, []string{"collection"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Backend API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Notifications published, by level and delivery result.",
		}, []string{"level", "result"}),
	}
	registry.MustRegister(m.syncOps, m.collectionSize, m.backendDuration, m.notifications)
	return m
}

func (m *Metrics) SyncOp(collection, op, outcome string) {
	if m == nil {
		return
	}
	m.syncOps.WithLabelValues(collection, op, outcome).Inc()
}

func (m *Metrics) CollectionSize(collection string, size int) {
	if m == nil {
		return
	}
	m.collectionSize.WithLabelValues(collection).Set(float64(size))
}

func (m *Metrics) BackendCall(endpoint, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(endpoint, status).Observe(elapsed.Seconds())
}

func (m *Metrics) Notification(level, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(level, result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

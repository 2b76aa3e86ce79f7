package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

// Metrics holds the prometheus collectors shared by the HTTP API, the core
// services and the worker. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	operations    *prometheus.CounterVec   // By operation and outcome
	opLatency     *prometheus.HistogramVec // By operation
	imageOps      *prometheus.CounterVec   // By action and outcome
	cacheRequests *prometheus.CounterVec   // By result: hit, miss, error
	httpRequests  *prometheus.CounterVec   // By method, route and status
	httpLatency   *prometheus.HistogramVec // By method and route
	events        *prometheus.CounterVec   // By event and outcome
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Catalog operations by outcome",
		}, []string{"operation", "outcome"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Catalog operation latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		imageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "image",
			Name:      "operations_total",
			Help:      "Image store calls by action and outcome",
		}, []string{"action", "outcome"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Item cache lookups by result",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "total",
			Help:      "Domain events published or consumed by outcome",
		}, []string{"event", "outcome"}),
	}

	reg.MustRegister(m.operations, m.opLatency, m.imageOps, m.cacheRequests, m.httpRequests, m.httpLatency, m.events)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOperation records one core operation. outcome is a domain error kind.
func (m *Metrics) ObserveOperation(operation, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.opLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveImage(action string, err error) {
	if m == nil {
		return
	}
	m.imageOps.WithLabelValues(action, outcome(err)).Inc()
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheRequests.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheRequests.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) CacheError() {
	if m != nil {
		m.cacheRequests.WithLabelValues("error").Inc()
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, started time.Time) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveEvent(event string, err error) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const namespace = "storefront"

// Registry owns the collectors. A private registry keeps tests independent
// of the process wide default.
type Registry struct {
	registry           *prometheus.Registry
	requests           *prometheus.CounterVec
	latency            *prometheus.HistogramVec
	correlations       *prometheus.CounterVec
	correlationFailure prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		correlations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "callback_correlations_total",
			Help:      "Gateway callbacks resolved to an order, by strategy.",
		}, []string{"strategy"}),
		correlationFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "callback_correlation_failures_total",
			Help:      "Gateway callbacks no strategy could resolve.",
		}),
	}
	r.registry.MustRegister(
		r.requests, r.latency, r.correlations, r.correlationFailure,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(handler, method string, status int, elapsed time.Duration) {
	r.requests.WithLabelValues(handler, method, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))
}

// CorrelationResolved counts a callback attributed by strategy.
func (r *Registry) CorrelationResolved(strategy model.CorrelationStrategy) {
	r.correlations.WithLabelValues(string(strategy)).Inc()
}

// CorrelationFailed counts a callback left unresolved.
func (r *Registry) CorrelationFailed() {
	r.correlationFailure.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

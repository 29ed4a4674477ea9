// internal/pkg/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics groups every collector the service exports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Requests    *prometheus.CounterVec
	LatencyMS   *prometheus.HistogramVec
	Checkout    *prometheus.CounterVec
	Fulfillment *prometheus.CounterVec
	Remote      *prometheus.CounterVec
}

// New creates and registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		Checkout: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "events_total",
			Help:      "Checkout step submissions by step and outcome.",
		}, []string{"step", "outcome"}),
		Fulfillment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fulfillment",
			Name:      "operations_total",
			Help:      "Fulfillment provider operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		Remote: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "breaker_state_changes_total",
			Help:      "Circuit breaker state transitions per remote dependency.",
		}, []string{"dependency", "to"}),
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.Checkout, m.Fulfillment, m.Remote)
	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(handler string, status int, latencyMS float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(latencyMS)
}

// CheckoutEvent records the outcome of a checkout step
func (m *Metrics) CheckoutEvent(step, outcome string) {
	if m == nil {
		return
	}
	m.Checkout.WithLabelValues(step, outcome).Inc()
}

// FulfillmentEvent records the outcome of a fulfillment operation
func (m *Metrics) FulfillmentEvent(operation, outcome string) {
	if m == nil {
		return
	}
	m.Fulfillment.WithLabelValues(operation, outcome).Inc()
}

// BreakerStateChange records a circuit breaker transition
func (m *Metrics) BreakerStateChange(dependency, to string) {
	if m == nil {
		return
	}
	m.Remote.WithLabelValues(dependency, to).Inc()
}

// Handler exposes the given gatherer in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

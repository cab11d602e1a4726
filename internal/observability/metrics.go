package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// latencyHistogramBuckets are buckets (seconds) for request duration histograms.
var latencyHistogramBuckets = []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5}

// APIMetrics is the subset of Metrics the HTTP middleware records against.
type APIMetrics interface {
	RecordRequest(method, route, statusClass string, duration time.Duration)
}

// Metrics holds the Prometheus instruments for the service: HTTP traffic,
// webhook delivery outcomes, and publisher drops. All methods are safe for
// concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	requestCount      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	webhookDeliveries *prometheus.CounterVec
	eventsDropped     *prometheus.CounterVec
}

// NewMetrics creates a registry with the service's instruments plus the
// standard Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status_class"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: latencyHistogramBuckets,
		}, []string{"method", "route"}),
		webhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook delivery attempts per event type and outcome",
		}, []string{"event_type", "outcome"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Events dropped when the publisher channel is full",
		}, []string{"event_type"}),
	}

	reg.MustRegister(m.requestCount, m.requestDuration, m.webhookDeliveries, m.eventsDropped)

	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one finished HTTP request.
func (m *Metrics) RecordRequest(method, route, statusClass string, duration time.Duration) {
	m.requestCount.WithLabelValues(method, route, statusClass).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDelivery records one webhook delivery attempt; outcome is
// "delivered" or "failed".
func (m *Metrics) RecordDelivery(eventType, outcome string) {
	m.webhookDeliveries.WithLabelValues(eventType, outcome).Inc()
}

// RecordEventDropped records an event dropped on a full publisher channel.
func (m *Metrics) RecordEventDropped(eventType string) {
	m.eventsDropped.WithLabelValues(eventType).Inc()
}

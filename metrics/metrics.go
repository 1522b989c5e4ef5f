package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checkout outcomes
const (
	OutcomeGatewayOrderCreated = "gateway_order_created"
	OutcomeGatewayUnavailable  = "gateway_unavailable"
	OutcomeConfirmed           = "confirmed"
	OutcomeRejected            = "rejected"
	OutcomeAbandoned           = "abandoned"
	OutcomeCODPlaced           = "cod_placed"
	OutcomePersistenceFailure  = "persistence_failure"
	OutcomeNotificationFailed  = "notification_failed"
)

type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
	Checkout  *prometheus.CounterVec
	Streams   prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the storefront metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clomora",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clomora",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		Checkout: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clomora",
			Name:      "checkout_outcomes_total",
			Help:      "Checkout results by payment method and outcome.",
		}, []string{"method", "outcome"}),
		Streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clomora",
			Name:      "live_streams",
			Help:      "Open websocket change streams.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.Checkout, m.Streams)
	return m
}

// CheckoutOutcome counts one checkout result. Safe on a nil receiver.
func (m *Metrics) CheckoutOutcome(method, outcome string) {
	if m == nil {
		return
	}
	m.Checkout.WithLabelValues(method, outcome).Inc()
}

// StreamOpened and StreamClosed track live websocket streams.
func (m *Metrics) StreamOpened() {
	if m != nil {
		m.Streams.Inc()
	}
}

func (m *Metrics) StreamClosed() {
	if m != nil {
		m.Streams.Dec()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

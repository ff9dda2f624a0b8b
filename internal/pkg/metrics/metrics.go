package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics carries the RED metrics for the HTTP surface plus the
// business counters the checkout path reports.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	CheckoutTotal *prometheus.CounterVec
	PaymentsTotal *prometheus.CounterVec
	EventsTotal   *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minimart",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "minimart",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	checkout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minimart",
		Subsystem: service,
		Name:      "checkout_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minimart",
		Subsystem: service,
		Name:      "payments_total",
		Help:      "Payment attempts by method and outcome.",
	}, []string{"method", "outcome"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minimart",
		Subsystem: service,
		Name:      "events_published_total",
		Help:      "Domain events handed to the bus, by event name.",
	}, []string{"event"})

	prometheus.MustRegister(requests, latency, checkout, payments, events)
	return &ServerMetrics{
		Requests:      requests,
		LatencyMS:     latency,
		CheckoutTotal: checkout,
		PaymentsTotal: payments,
		EventsTotal:   events,
	}
}

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

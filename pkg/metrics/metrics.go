package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics holds the request counters and latency histograms the HTTP
// middleware feeds. Event metrics count hub publishes and drops.
type ServerMetrics struct {
	reg *prometheus.Registry

	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	EventsPublished *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec
}

func NewServerMetrics() *ServerMetrics {
	m := &ServerMetrics{
		reg: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_latency_ms",
			Help:    "HTTP request latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"route", "method"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_events_published_total",
			Help: "Realtime events published to the hub, by kind.",
		}, []string{"kind"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_events_dropped_total",
			Help: "Realtime events dropped for slow subscribers, by kind.",
		}, []string{"kind"}),
	}

	m.reg.MustRegister(m.Requests, m.LatencyMS, m.EventsPublished, m.EventsDropped)
	return m
}

// Handler serves the registry for scraping.
func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

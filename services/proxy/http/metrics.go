package http

import "github.com/prometheus/client_golang/prometheus"

var (
	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_proxy_upstream_requests_total",
		Help: "Upstream basemap requests by outcome",
	}, []string{"outcome"})
	upstreamDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "atlas_proxy_upstream_duration_seconds",
		Help:    "Upstream basemap request duration in seconds",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
	rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_proxy_rate_limited_total",
		Help: "Requests dropped by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(upstreamRequests, upstreamDuration, rateLimited)
}

package http

import "github.com/prometheus/client_golang/prometheus"

var (
	tileRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_tile_requests_total",
		Help: "Tile requests by outcome (ok, empty, error)",
	}, []string{"outcome"})
	tileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "atlas_tile_duration_seconds",
		Help:    "Tile synthesis duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
)

func init() {
	prometheus.MustRegister(tileRequests, tileDuration)
}

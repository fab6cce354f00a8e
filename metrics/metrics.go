// Package metrics provides Prometheus metrics for the console.
// It exports:
//   - http_request_total / http_request_duration_seconds / http_request_in_flight
//     for the console's own HTTP surface
//   - hemocore_upstream_requests_total / hemocore_upstream_request_duration_seconds
//     for calls made to the HemoCore API
//   - hemocore_snapshot_records / hemocore_snapshot_branch_failures_total
//     for the periodically refreshed snapshot
//   - hemocore_low_stock_factors / hemocore_factors_by_expiry for stock alerts
//
// All metrics are registered with the default registry during package
// initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen recently)",
		},
	)

	UpstreamRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hemocore_upstream_requests_total",
			Help: "Requests sent to the HemoCore API",
		},
		[]string{"method", "resource", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hemocore_upstream_request_duration_seconds",
			Help:    "HemoCore API round-trip latency",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "resource"},
	)

	SnapshotRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hemocore_snapshot_records",
			Help: "Records per collection in the current snapshot",
		},
		[]string{"collection"},
	)

	SnapshotBranchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hemocore_snapshot_branch_failures_total",
			Help: "Collections that failed to load during a snapshot refresh",
		},
		[]string{"collection"},
	)

	LowStockFactors = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hemocore_low_stock_factors",
			Help: "Factor lots below the low stock threshold",
		},
	)

	FactorsByExpiry = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hemocore_factors_by_expiry",
			Help: "Factor lots per expiry class",
		},
		[]string{"class"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(UpstreamRequestTotals)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(SnapshotRecords)
	prometheus.MustRegister(SnapshotBranchFailures)
	prometheus.MustRegister(LowStockFactors)
	prometheus.MustRegister(FactorsByExpiry)
}

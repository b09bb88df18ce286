// Package metrics exposes Prometheus counters for the curation pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts requests by route pattern and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks request latency.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curator_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.01, .05, .1, .5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	// Resolutions counts suggestion lookups by outcome tier.
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_resolutions_total",
			Help: "Suggestion resolutions by tier (tier1, tier2, unresolved)",
		},
		[]string{"tier"},
	)

	// Exports counts playlist exports by outcome.
	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_exports_total",
			Help: "Playlist exports by outcome",
		},
		[]string{"outcome"},
	)

	// ExportedTracks counts tracks written to playlists.
	ExportedTracks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_exported_tracks_total",
			Help: "Tracks added to exported playlists",
		},
	)

	// ModelRequests counts generative model calls by outcome.
	ModelRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_model_requests_total",
			Help: "Generative model calls by outcome",
		},
		[]string{"outcome"},
	)

	// ModelDuration tracks model call latency.
	ModelDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curator_model_request_duration_seconds",
			Help:    "Generative model call latency",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "curator_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// SessionRefreshes counts access token renewals by outcome.
	SessionRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_session_refreshes_total",
			Help: "Access token renewals by outcome (renewed, expired, failed)",
		},
		[]string{"outcome"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one completed request.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordResolution records one resolved or unresolved suggestion.
func RecordResolution(tier string) {
	Resolutions.WithLabelValues(tier).Inc()
}

// RecordExport records an export attempt and the tracks it wrote.
func RecordExport(outcome string, tracks int) {
	Exports.WithLabelValues(outcome).Inc()
	if tracks > 0 {
		ExportedTracks.Add(float64(tracks))
	}
}

// RecordModelCall records a model call outcome and its latency.
func RecordModelCall(outcome string, d time.Duration) {
	ModelRequests.WithLabelValues(outcome).Inc()
	if d > 0 {
		ModelDuration.Observe(d.Seconds())
	}
}

// RecordRefresh records a session renewal outcome.
func RecordRefresh(outcome string) {
	SessionRefreshes.WithLabelValues(outcome).Inc()
}

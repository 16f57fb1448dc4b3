// Package metrics holds the Prometheus collectors shared across the AppView.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Toggles counts relationship toggles by kind and outcome
	Toggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapgram",
		Name:      "relationship_toggles_total",
		Help:      "Relationship toggles by kind and outcome.",
	}, []string{"kind", "outcome"})

	// ToggleFailures counts toggles that returned an error, by kind and failing step
	ToggleFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapgram",
		Name:      "relationship_toggle_failures_total",
		Help:      "Relationship toggles that failed, by kind and step.",
	}, []string{"kind", "step"})

	// Compensations counts compensating asset deletions by operation and result
	Compensations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapgram",
		Name:      "asset_compensations_total",
		Help:      "Compensating asset deletions after failed row writes.",
	}, []string{"operation", "result"})

	// LeakedAssets counts assets that could not be deleted after their row was gone
	LeakedAssets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snapgram",
		Name:      "leaked_assets_total",
		Help:      "Assets left behind because deletion failed after the owning row was removed.",
	})

	// CounterDrift counts counters corrected by the reconciler
	CounterDrift = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapgram",
		Name:      "counter_drift_corrections_total",
		Help:      "Denormalized counters rewritten by reconciliation.",
	}, []string{"table", "column"})

	// CacheRequests counts query cache lookups by view kind and result (hit, miss, error)
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapgram",
		Name:      "query_cache_requests_total",
		Help:      "Query cache lookups by view kind and result.",
	}, []string{"kind", "result"})

	// CacheInvalidations counts invalidated cache entries by view kind
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapgram",
		Name:      "query_cache_invalidations_total",
		Help:      "Cache entries dropped by invalidation, by view kind.",
	}, []string{"kind"})

	// EventsPublished counts published events by type and result (ok, error)
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapgram",
		Name:      "events_published_total",
		Help:      "Events handed to the events backend, by type and result.",
	}, []string{"type", "result"})

	// LiveConnections tracks open live-view websocket connections
	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "snapgram",
		Name:      "live_connections",
		Help:      "Open live-view websocket connections.",
	})

	// ImagePreviews counts preview renders by cache result (hit, miss) and outcome
	ImagePreviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapgram",
		Name:      "image_previews_total",
		Help:      "Image preview requests by cache result and outcome.",
	}, []string{"cache", "outcome"})
)

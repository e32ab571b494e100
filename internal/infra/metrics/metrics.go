// Package metrics provides Prometheus metrics for LumeIQ: counters, gauges,
// and histograms for verification, impact events, sessions, and trips.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Verification ───────────────────────────────────────────────────────────

// Verifications tracks verification pipeline outcomes by terminal stage.
var Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lumeiq",
	Name:      "verifications_total",
	Help:      "Total verification pipeline runs by terminal stage.",
}, []string{"stage"})

// VisionLatency tracks the vision provider round-trip in seconds.
var VisionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "lumeiq",
	Name:      "vision_latency_seconds",
	Help:      "Vision provider request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
})

// VisionFallbacks tracks provider failures absorbed into offline approval.
var VisionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lumeiq",
	Name:      "vision_fallbacks_total",
	Help:      "Total vision provider failures degraded to offline approval.",
})

// ─── Impact Events ──────────────────────────────────────────────────────────

// EventsApplied tracks impact events folded into state by kind.
var EventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lumeiq",
	Name:      "impact_events_total",
	Help:      "Total impact events applied to persistent state.",
}, []string{"kind"})

// CarbonSavedGrams tracks cumulative carbon savings credited.
var CarbonSavedGrams = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lumeiq",
	Name:      "carbon_saved_grams_total",
	Help:      "Cumulative grams of CO2 saved across all events.",
})

// ─── Sessions & Trips ───────────────────────────────────────────────────────

// SessionDuration tracks completed activity session length in seconds.
var SessionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "lumeiq",
	Name:      "session_duration_seconds",
	Help:      "Completed activity session duration in seconds.",
	Buckets:   []float64{60, 300, 600, 1200, 1800, 3600, 7200},
}, []string{"activity"})

// SessionsActive tracks whether a session timer is running (0 or 1).
var SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "lumeiq",
	Name:      "sessions_active",
	Help:      "Number of running activity sessions.",
})

// TripsCompleted tracks live-tracked trips logged, by mode.
var TripsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lumeiq",
	Name:      "trips_completed_total",
	Help:      "Total live-tracked trips logged.",
}, []string{"mode"})

// TripDistanceKm tracks cumulative live-tracked distance.
var TripDistanceKm = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lumeiq",
	Name:      "trip_distance_km_total",
	Help:      "Cumulative kilometers accumulated by live trip tracking.",
})

// ─── Routing ────────────────────────────────────────────────────────────────

// RouteRequests tracks routing collaborator calls by mode and result.
var RouteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lumeiq",
	Name:      "route_requests_total",
	Help:      "Routing collaborator requests by mode and result.",
}, []string{"mode", "result"})

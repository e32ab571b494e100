// Package api provides the HTTP server for LumeIQ: the impact summary and
// history, the verification endpoint, route comparison, session and trip
// control, and the rewards surface.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumeiq-app/lumeiq/internal/app/rewards"
	"github.com/lumeiq-app/lumeiq/internal/app/route"
	"github.com/lumeiq-app/lumeiq/internal/app/score"
	"github.com/lumeiq-app/lumeiq/internal/app/trip"
	"github.com/lumeiq-app/lumeiq/internal/app/verify"
	"github.com/lumeiq-app/lumeiq/internal/domain"
)

// TripLister reads completed trip logs. Satisfied by the sqlite store.
type TripLister interface {
	ListTrips(limit int) ([]domain.TripLog, error)
}

// Server is the LumeIQ HTTP API server.
type Server struct {
	version        string
	scores         *score.Service
	pipeline       *verify.Pipeline
	sessions       *trip.SessionTracker
	live           *trip.LiveTracker
	planner        *route.Planner
	rewards        *rewards.Service
	streaks        *rewards.StreakService
	trips          TripLister
	metricsEnabled bool
}

// NewServer creates an API server over the application services.
func NewServer(version string, scores *score.Service, pipeline *verify.Pipeline,
	sessions *trip.SessionTracker, live *trip.LiveTracker,
	planner *route.Planner, rw *rewards.Service, trips TripLister) *Server {
	return &Server{
		version:  version,
		scores:   scores,
		pipeline: pipeline,
		sessions: sessions,
		live:     live,
		planner:  planner,
		rewards:  rw,
		trips:    trips,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetStreaks mounts the streak endpoint.
func (s *Server) SetStreaks(st *rewards.StreakService) { s.streaks = st }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
	})

	r.Route("/api/impact", func(r chi.Router) {
		r.Get("/summary", s.handleImpactSummary)
		r.Get("/events", s.handleImpactEvents)
	})

	r.Post("/api/verify", s.handleVerify)
	r.Post("/api/route/compare", s.handleRouteCompare)

	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", s.handleSessionStatus)
		r.Post("/start", s.handleSessionStart)
		r.Post("/stop", s.handleSessionStop)
	})

	r.Route("/api/trip", func(r chi.Router) {
		r.Get("/", s.handleTripStatus)
		r.Get("/history", s.handleTripHistory)
		r.Post("/fix", s.handleTripFix)
		r.Post("/start", s.handleTripStart)
		r.Post("/stop", s.handleTripStop)
	})

	r.Route("/api/coupons", func(r chi.Router) {
		r.Get("/", s.handleCoupons)
		r.Post("/redeem", s.handleCouponRedeem)
	})

	r.Post("/api/habits/log", s.handleHabitLog)
	r.Post("/api/scan", s.handleScan)

	if s.streaks != nil {
		r.Get("/api/streak", s.handleStreak)
	}

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// decodeBody parses a JSON request body.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrCouponNotFound),
		errors.Is(err, domain.ErrNoActiveSession),
		errors.Is(err, domain.ErrNoActiveTrip),
		errors.Is(err, domain.ErrNoRoute):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCouponRedeemed),
		errors.Is(err, domain.ErrSessionActive),
		errors.Is(err, domain.ErrTripActive),
		errors.Is(err, domain.ErrAlreadyLogged):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTierTooLow):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrScanLimit),
		errors.Is(err, domain.ErrScanCooldown):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrRouteRequired),
		errors.Is(err, domain.ErrUnknownActivity),
		errors.Is(err, domain.ErrTripTooShort):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRouterOffline):
		status = http.StatusBadGateway
	}
	writeError(w, status, err.Error())
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

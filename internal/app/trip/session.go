// Package trip implements the two movement trackers: timed activity
// sessions (start/stop timers with per-minute accrual rates) and live
// GPS-tracked trips (haversine distance accumulation over position fixes).
package trip

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumeiq-app/lumeiq/internal/domain"
	"github.com/lumeiq-app/lumeiq/internal/infra/metrics"
)

// EventApplier folds a completed session or trip into the impact state.
// Satisfied by score.Service.
type EventApplier interface {
	ApplyEvent(ev domain.ImpactEvent) (domain.ImpactState, error)
}

// activityRates converts elapsed time into CO2 saved and points.
// Commuting requires a named origin and destination and also credits the
// economic pillar through the aggregator's money routing.
var activityRates = map[domain.ActivityKind]domain.ActivityRate{
	domain.ActivityWalking:   {CO2PerMinute: 120, PointsPerMinute: 1.8},
	domain.ActivityCycling:   {CO2PerMinute: 150, PointsPerMinute: 2.2},
	domain.ActivityCommuting: {CO2PerMinute: 90, PointsPerMinute: 1.5, NeedsRoute: true, Economic: true},
	domain.ActivityJogging:   {CO2PerMinute: 110, PointsPerMinute: 1.6},
}

// RateFor exposes the accrual table for display surfaces.
func RateFor(kind domain.ActivityKind) (domain.ActivityRate, bool) {
	r, ok := activityRates[kind]
	return r, ok
}

// SessionTracker runs at most one activity session at a time. Start and
// Stop are serialized; a session survives only in memory, matching the
// lifetime of the process that started it.
type SessionTracker struct {
	mu      sync.Mutex
	applier EventApplier
	now     func() time.Time
	active  *domain.ActiveSession
}

// NewSessionTracker creates a tracker with no active session.
func NewSessionTracker(applier EventApplier) *SessionTracker {
	return &SessionTracker{applier: applier, now: time.Now}
}

// Start begins a session. Exactly one may run at a time; commuting
// additionally requires both origin and destination.
func (t *SessionTracker) Start(kind domain.ActivityKind, origin, destination string) (domain.ActiveSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		return domain.ActiveSession{}, domain.ErrSessionActive
	}
	rate, ok := activityRates[kind]
	if !ok {
		return domain.ActiveSession{}, fmt.Errorf("%w: %q", domain.ErrUnknownActivity, kind)
	}
	if rate.NeedsRoute && (origin == "" || destination == "") {
		return domain.ActiveSession{}, domain.ErrRouteRequired
	}

	t.active = &domain.ActiveSession{
		Kind:        kind,
		Origin:      origin,
		Destination: destination,
		StartedAt:   t.now(),
	}
	metrics.SessionsActive.Inc()
	log.Printf("[trip] %s session started", kind)
	return *t.active, nil
}

// Active returns the running session, if any.
func (t *SessionTracker) Active() (domain.ActiveSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return domain.ActiveSession{}, false
	}
	return *t.active, true
}

// Stop ends the running session, converts elapsed time into an
// environmental impact event, and applies it exactly once.
func (t *SessionTracker) Stop() (domain.ImpactEvent, domain.ImpactState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return domain.ImpactEvent{}, domain.ImpactState{}, domain.ErrNoActiveSession
	}
	session := *t.active
	t.active = nil
	metrics.SessionsActive.Dec()

	rate := activityRates[session.Kind]
	ended := t.now()
	elapsed := ended.Sub(session.StartedAt)
	minutes := elapsed.Seconds() / 60

	desc := fmt.Sprintf("%s session (%s)", session.Kind, formatDuration(elapsed))
	if session.Origin != "" && session.Destination != "" {
		desc = fmt.Sprintf("%s: %s → %s (%s)", session.Kind, session.Origin, session.Destination, formatDuration(elapsed))
	}

	ev := domain.ImpactEvent{
		ID:               uuid.NewString(),
		Kind:             domain.EventTransit,
		Pillar:           domain.PillarEnvironmental,
		Description:      desc,
		CarbonSavedGrams: math.Round(rate.CO2PerMinute * minutes),
		Points:           math.Round(rate.PointsPerMinute * minutes),
		Timestamp:        ended,
		Verified:         true,
	}

	state, err := t.applier.ApplyEvent(ev)
	if err != nil {
		return ev, state, fmt.Errorf("applying session event: %w", err)
	}

	metrics.SessionDuration.WithLabelValues(string(session.Kind)).Observe(elapsed.Seconds())
	log.Printf("[trip] %s session stopped after %s (+%.0f pts, %.0fg CO2)",
		session.Kind, formatDuration(elapsed), ev.Points, ev.CarbonSavedGrams)
	return ev, state, nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

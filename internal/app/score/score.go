// Package score implements the Impact Score Aggregator: it folds impact
// events into the persistent impact state, maintains the three pillar
// scores, and derives the Impact IQ and tier on read.
package score

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/lumeiq-app/lumeiq/internal/domain"
	"github.com/lumeiq-app/lumeiq/internal/infra/metrics"
)

// Pillar routing constants. Each event type feeds the pillars at its own
// scale; the underlying totals grow unbounded while every pillar addition
// clamps at 100.
const (
	transitPointsDivisor = 3.0   // transit/session points → Environmental
	photoPillarFactor    = 0.4   // photo/purchase points → tagged pillar
	carbonPillarFactor   = 0.003 // route carbon saved (g) → Environmental
	moneyPillarFactor    = 0.02  // route money saved (INR) → Economic
	creditRate           = 0.05  // green credits per point earned
)

// StreakRecorder marks a calendar day as active for streak tracking.
type StreakRecorder interface {
	RecordAction(day time.Time) error
}

// Service folds impact events into the persistent state. Read-modify-write
// of the state is serialized: concurrent completions (a trip stop racing a
// photo verification) cannot lose updates.
type Service struct {
	mu      sync.Mutex
	store   domain.StateStore
	streaks StreakRecorder
}

// NewService creates a score service over the given state store.
func NewService(store domain.StateStore) *Service {
	return &Service{store: store}
}

// SetStreaks attaches a streak recorder; every applied event then counts
// toward the daily streak.
func (s *Service) SetStreaks(r StreakRecorder) { s.streaks = r }

// ApplyEvent merges one impact event into the persistent state and returns
// the updated state. Exactly one application per event; the event itself is
// appended to the bounded history.
func (s *Service) ApplyEvent(ev domain.ImpactEvent) (domain.ImpactState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadState()
	if err != nil {
		return state, fmt.Errorf("load state: %w", err)
	}

	switch ev.Kind {
	case domain.EventTransit:
		addPillar(&state.Pillars, domain.PillarEnvironmental, ev.Points/transitPointsDivisor)
		addPillar(&state.Pillars, domain.PillarEnvironmental, ev.CarbonSavedGrams*carbonPillarFactor)
		addPillar(&state.Pillars, domain.PillarEconomic, ev.MoneySavedINR*moneyPillarFactor)
		state.TransitCount++
	case domain.EventPhoto:
		addPillar(&state.Pillars, ev.Pillar, ev.Points*photoPillarFactor)
		state.VerificationCount++
	case domain.EventPurchase:
		addPillar(&state.Pillars, ev.Pillar, ev.Points*photoPillarFactor)
		state.PurchaseCount++
	}

	state.TotalCarbonSavedGrams += ev.CarbonSavedGrams
	state.TotalPoints += ev.Points
	if ev.Points > 0 {
		state.GreenCredits = roundCredits(state.GreenCredits + ev.Points*creditRate)
	}

	if err := s.store.SaveState(state); err != nil {
		return state, fmt.Errorf("save state: %w", err)
	}
	if err := s.store.AppendEvent(ev); err != nil {
		return state, fmt.Errorf("append event: %w", err)
	}

	metrics.EventsApplied.WithLabelValues(string(ev.Kind)).Inc()
	metrics.CarbonSavedGrams.Add(ev.CarbonSavedGrams)

	if s.streaks != nil {
		if err := s.streaks.RecordAction(ev.Timestamp); err != nil {
			log.Printf("[score] streak update failed: %v", err)
		}
	}

	state.History = append([]domain.ImpactEvent{ev}, state.History...)
	if len(state.History) > domain.HistoryLimit {
		state.History = state.History[:domain.HistoryLimit]
	}
	return state, nil
}

// State returns the current persisted state with derived fields intact.
func (s *Service) State() (domain.ImpactState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.LoadState()
}

// addPillar applies a clamped pillar addition: min(100, current+delta).
// Negative deltas are ignored — pillar scores only move forward.
func addPillar(p *domain.PillarScores, pillar domain.Pillar, delta float64) {
	if delta <= 0 {
		return
	}
	switch pillar {
	case domain.PillarEnvironmental:
		p.Environmental = math.Min(100, p.Environmental+delta)
	case domain.PillarSocial:
		p.Social = math.Min(100, p.Social+delta)
	case domain.PillarEconomic:
		p.Economic = math.Min(100, p.Economic+delta)
	}
}

// roundCredits keeps green credits at 2 decimal places.
func roundCredits(v float64) float64 {
	return math.Round(v*100) / 100
}

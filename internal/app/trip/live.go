package trip

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumeiq-app/lumeiq/internal/domain"
	"github.com/lumeiq-app/lumeiq/internal/infra/metrics"
)

const (
	// jitterThresholdKm discards GPS noise: fixes closer than 5 meters to
	// the previous accepted fix do not advance the trip.
	jitterThresholdKm = 0.005
	// minTripKm is the shortest trip worth logging.
	minTripKm     = 0.01
	earthRadiusKm = 6371
)

// TripStore persists completed trip logs. Satisfied by the sqlite store.
type TripStore interface {
	InsertTrip(domain.TripLog) error
}

// LiveTracker accumulates haversine distance over a stream of position
// fixes for at most one trip at a time. Distance and emissions only ever
// grow while a trip runs; stopping below the minimum distance discards it.
type LiveTracker struct {
	mu      sync.Mutex
	applier EventApplier
	trips   TripStore
	watcher domain.PositionWatcher
	now     func() time.Time

	mode        domain.TransportMode
	from, to    string
	startedAt   time.Time
	last        *domain.Position
	distanceKm  float64
	co2Grams    float64
	unsubscribe func()
	running     bool
}

// NewLiveTracker creates a tracker over the given position source.
func NewLiveTracker(applier EventApplier, trips TripStore, watcher domain.PositionWatcher) *LiveTracker {
	return &LiveTracker{applier: applier, trips: trips, watcher: watcher, now: time.Now}
}

// Start begins tracking a trip in the given mode. The position watch stays
// live until Stop.
func (t *LiveTracker) Start(ctx context.Context, mode domain.TransportMode, from, to string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return domain.ErrTripActive
	}

	unsub, err := t.watcher.Watch(ctx, t.OnFix)
	if err != nil {
		return fmt.Errorf("starting position watch: %w", err)
	}

	t.mode = mode
	t.from, t.to = from, to
	t.startedAt = t.now()
	t.last = nil
	t.distanceKm = 0
	t.co2Grams = 0
	t.unsubscribe = unsub
	t.running = true
	log.Printf("[trip] live %s trip started: %s → %s", mode, from, to)
	return nil
}

// OnFix folds one position fix into the running trip. Fixes within the
// jitter threshold of the last accepted fix are ignored; anything while no
// trip runs is dropped.
func (t *LiveTracker) OnFix(pos domain.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	if t.last == nil {
		p := pos
		t.last = &p
		return
	}
	d := haversineKm(*t.last, pos)
	if d <= jitterThresholdKm {
		return
	}
	t.distanceKm += d
	t.co2Grams += d * domain.ProfileFor(t.mode).GramsCO2PerKm
	p := pos
	t.last = &p
}

// Progress reports the running trip's distance and emissions so far.
func (t *LiveTracker) Progress() (distanceKm, co2Grams float64, running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.distanceKm, t.co2Grams, t.running
}

// Stop ends the trip, releases the position watch, and logs the trip if it
// covered at least the minimum distance. Savings are benchmarked against
// driving the same distance and never go negative.
func (t *LiveTracker) Stop() (domain.TripLog, domain.ImpactState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return domain.TripLog{}, domain.ImpactState{}, domain.ErrNoActiveTrip
	}
	t.running = false
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}

	if t.distanceKm <= minTripKm {
		log.Printf("[trip] live trip discarded: %.4f km below minimum", t.distanceKm)
		return domain.TripLog{}, domain.ImpactState{}, domain.ErrTripTooShort
	}

	car := domain.ProfileFor(domain.ModeCar)
	mode := domain.ProfileFor(t.mode)
	carbonSaved := math.Max(0, t.distanceKm*car.GramsCO2PerKm-t.co2Grams)
	moneySaved := math.Max(0, roundINR(t.distanceKm*(car.CostPerKm-mode.CostPerKm)))
	ended := t.now()

	tl := domain.TripLog{
		ID:               uuid.NewString(),
		Mode:             t.mode,
		From:             t.from,
		To:               t.to,
		DistanceKm:       roundKm(t.distanceKm),
		CarbonGrams:      math.Round(t.co2Grams),
		CarbonSavedGrams: math.Round(carbonSaved),
		MoneySavedINR:    moneySaved,
		StartedAt:        t.startedAt,
		EndedAt:          ended,
	}
	if err := t.trips.InsertTrip(tl); err != nil {
		return tl, domain.ImpactState{}, fmt.Errorf("logging trip: %w", err)
	}

	ev := domain.ImpactEvent{
		ID:               uuid.NewString(),
		Kind:             domain.EventTransit,
		Pillar:           domain.PillarEnvironmental,
		Description:      fmt.Sprintf("%.1f km by %s: %s → %s", tl.DistanceKm, tl.Mode, tl.From, tl.To),
		CarbonSavedGrams: tl.CarbonSavedGrams,
		MoneySavedINR:    tl.MoneySavedINR,
		Timestamp:        ended,
		Verified:         true,
	}
	state, err := t.applier.ApplyEvent(ev)
	if err != nil {
		return tl, state, fmt.Errorf("applying trip event: %w", err)
	}

	metrics.TripsCompleted.WithLabelValues(string(tl.Mode)).Inc()
	metrics.TripDistanceKm.Add(tl.DistanceKm)
	log.Printf("[trip] live %s trip logged: %.2f km, %.0fg CO2 saved", tl.Mode, tl.DistanceKm, tl.CarbonSavedGrams)
	return tl, state, nil
}

// haversineKm is the great-circle distance between two WGS84 positions.
func haversineKm(a, b domain.Position) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func roundKm(v float64) float64  { return math.Round(v*1000) / 1000 }
func roundINR(v float64) float64 { return math.Round(v*100) / 100 }

// Package route computes per-mode carbon footprints for a journey and
// recommends the greenest practical option.
package route

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/lumeiq-app/lumeiq/internal/domain"
	"github.com/lumeiq-app/lumeiq/internal/infra/metrics"
)

// Practicality limits: beyond these distances a mode is excluded from the
// greenest recommendation, though it still appears in the comparison.
const (
	maxWalkKm  = 5
	maxCycleKm = 15
)

// Footprint is the pure per-mode outcome for a given distance.
type Footprint struct {
	Mode          domain.TransportMode `json:"mode"`
	DistanceKm    float64              `json:"distance_km"`
	DurationMin   float64              `json:"duration_min"`
	CO2Grams      float64              `json:"co2_grams"`
	CO2SavedGrams float64              `json:"co2_saved_grams"`
	CostINR       float64              `json:"cost_inr"`
	Practical     bool                 `json:"practical"`
	Polyline      string               `json:"polyline,omitempty"`
}

// Compute derives one mode's footprint for a distance. Pure and total:
// savings are benchmarked against driving and never negative.
func Compute(distanceKm float64, mode domain.TransportMode) Footprint {
	p := domain.ProfileFor(mode)
	car := domain.ProfileFor(domain.ModeCar)
	co2 := distanceKm * p.GramsCO2PerKm
	return Footprint{
		Mode:          mode,
		DistanceKm:    distanceKm,
		DurationMin:   math.Round(distanceKm / p.SpeedKmh * 60),
		CO2Grams:      math.Round(co2),
		CO2SavedGrams: math.Round(math.Max(0, distanceKm*car.GramsCO2PerKm-co2)),
		CostINR:       math.Round(distanceKm * p.CostPerKm),
		Practical:     practical(mode, distanceKm),
	}
}

func practical(mode domain.TransportMode, distanceKm float64) bool {
	switch mode {
	case domain.ModeWalk:
		return distanceKm <= maxWalkKm
	case domain.ModeCycle:
		return distanceKm <= maxCycleKm
	}
	return true
}

// Greenest picks the practical footprint with the lowest emissions,
// breaking ties by lower cost and then by the table's mode order. Returns
// false when no candidate is practical.
func Greenest(candidates []Footprint) (Footprint, bool) {
	best := Footprint{}
	found := false
	for _, c := range candidates {
		if !c.Practical {
			continue
		}
		if !found || less(c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

func less(a, b Footprint) bool {
	if a.CO2Grams != b.CO2Grams {
		return a.CO2Grams < b.CO2Grams
	}
	return a.CostINR < b.CostINR
}

// Comparison is the full answer for one journey.
type Comparison struct {
	From       string      `json:"from"`
	To         string      `json:"to"`
	Candidates []Footprint `json:"candidates"`
	Greenest   *Footprint  `json:"greenest,omitempty"`
}

// Planner builds comparisons by routing each mode through the routing
// collaborator and labeling endpoints through the geocoder.
type Planner struct {
	router   domain.Router
	geocoder domain.Geocoder
}

// NewPlanner wires a planner.
func NewPlanner(router domain.Router, geocoder domain.Geocoder) *Planner {
	return &Planner{router: router, geocoder: geocoder}
}

// Compare routes the journey for every mode and assembles the comparison.
// A mode the router cannot serve is dropped from the candidate set; if no
// mode routes at all, ErrNoRoute is returned. Candidates are ordered by
// emissions, cleanest first.
func (p *Planner) Compare(ctx context.Context, from, to domain.Position) (Comparison, error) {
	cmp := Comparison{
		From: p.placeName(ctx, from),
		To:   p.placeName(ctx, to),
	}

	for _, mode := range domain.AllModes() {
		leg, err := p.router.Route(ctx, from, to, mode)
		if err != nil {
			metrics.RouteRequests.WithLabelValues(string(mode), "error").Inc()
			log.Printf("[route] %s leg unavailable: %v", mode, err)
			continue
		}
		metrics.RouteRequests.WithLabelValues(string(mode), "ok").Inc()
		fp := Compute(leg.DistanceKm, mode)
		if leg.DurationMin > 0 {
			fp.DurationMin = math.Round(leg.DurationMin)
		}
		fp.Polyline = leg.Polyline
		cmp.Candidates = append(cmp.Candidates, fp)
	}
	if len(cmp.Candidates) == 0 {
		return cmp, domain.ErrNoRoute
	}

	sort.SliceStable(cmp.Candidates, func(i, j int) bool {
		return less(cmp.Candidates[i], cmp.Candidates[j])
	})
	if best, ok := Greenest(cmp.Candidates); ok {
		cmp.Greenest = &best
	}
	return cmp, nil
}

// placeName labels a position, degrading to rounded coordinates when the
// geocoder is unavailable.
func (p *Planner) placeName(ctx context.Context, pos domain.Position) string {
	if p.geocoder != nil {
		if name, err := p.geocoder.ReverseGeocode(ctx, pos); err == nil && name != "" {
			return name
		}
	}
	return coordLabel(pos)
}

func coordLabel(pos domain.Position) string {
	return fmt.Sprintf("%.4f, %.4f", pos.Lat, pos.Lng)
}

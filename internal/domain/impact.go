// Package domain holds the pure types of the LumeIQ impact engine.
// No infrastructure imports — application and infra layers depend on this
// package, never the other way around.
package domain

import (
	"math"
	"time"
)

// ─── Pillars ────────────────────────────────────────────────────────────────

// Pillar is one of the three sustainability dimensions tracked independently
// before being weighted into the Impact IQ.
type Pillar string

const (
	PillarEnvironmental Pillar = "environmental"
	PillarSocial        Pillar = "social"
	PillarEconomic      Pillar = "economic"
)

// PillarScores accumulates additive contributions per pillar. Stored values
// are clamped at 100 on every addition; the cumulative totals elsewhere in
// ImpactState grow without bound.
type PillarScores struct {
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
	Economic      float64 `json:"economic"`
}

// Pillar weights for the composite score: E 40%, S 30%, Ec 30%.
const (
	WeightEnvironmental = 0.4
	WeightSocial        = 0.3
	WeightEconomic      = 0.3
)

// IQ derives the 0–100 Impact IQ from the pillar scores. Each pillar is
// clamped to [0,100] before weighting, so overgrown pillars cannot push the
// score past 100.
func (p PillarScores) IQ() int {
	e := clamp100(p.Environmental)
	s := clamp100(p.Social)
	ec := clamp100(p.Economic)
	return int(math.Round(WeightEnvironmental*e + WeightSocial*s + WeightEconomic*ec))
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ─── Tiers ──────────────────────────────────────────────────────────────────

// Tier is the reward band derived from Impact IQ.
type Tier string

const (
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// TierForIQ maps an Impact IQ to its tier. Total and monotonic:
// Bronze [0,50), Silver [50,70), Gold [70,85), Platinum [85,100].
func TierForIQ(iq int) Tier {
	switch {
	case iq >= 85:
		return TierPlatinum
	case iq >= 70:
		return TierGold
	case iq >= 50:
		return TierSilver
	default:
		return TierBronze
	}
}

// ─── Impact Events ──────────────────────────────────────────────────────────

// EventKind categorizes the source of an impact event.
type EventKind string

const (
	EventPurchase EventKind = "purchase"
	EventTransit  EventKind = "transit"
	EventPhoto    EventKind = "photo"
)

// ImpactEvent is the immutable record of one completed user action. Created
// when an action finishes verification or a session/trip stops, folded into
// ImpactState exactly once, and kept in a bounded history for display.
type ImpactEvent struct {
	ID               string    `json:"id"`
	Kind             EventKind `json:"kind"`
	Pillar           Pillar    `json:"pillar"`
	Description      string    `json:"description"`
	CarbonSavedGrams float64   `json:"carbon_saved_grams"`
	Points           float64   `json:"points"`
	MoneySavedINR    float64   `json:"money_saved_inr"`
	Timestamp        time.Time `json:"timestamp"`
	Verified         bool      `json:"verified"`
}

// HistoryLimit bounds the retained event history (most recent first).
const HistoryLimit = 100

// ─── Persistent State Snapshot ──────────────────────────────────────────────

// ImpactState is the aggregate root persisted per installation: pillar
// scores, cumulative totals, counters, and the bounded event history.
// Tier and IQ are derived on read, never stored.
type ImpactState struct {
	Pillars               PillarScores  `json:"pillars"`
	TotalCarbonSavedGrams float64       `json:"total_carbon_saved_grams"`
	TotalPoints           float64       `json:"total_points"`
	GreenCredits          float64       `json:"green_credits"`
	PurchaseCount         int           `json:"purchase_count"`
	TransitCount          int           `json:"transit_count"`
	VerificationCount     int           `json:"verification_count"`
	History               []ImpactEvent `json:"history"`
	RedeemedCoupons       []string      `json:"redeemed_coupons"`
}

// IQ returns the derived Impact IQ for this state.
func (s ImpactState) IQ() int { return s.Pillars.IQ() }

// Tier returns the derived tier for this state.
func (s ImpactState) Tier() Tier { return TierForIQ(s.IQ()) }

// ─── Streaks ────────────────────────────────────────────────────────────────

// Streak tracks consecutive days with at least one recorded eco action.
// One free freeze per ISO week keeps a single missed day from breaking it;
// longer gaps reset silently.
type Streak struct {
	CurrentDays   int       `json:"current_days"`
	LongestDays   int       `json:"longest_days"`
	LastDate      time.Time `json:"last_date,omitzero"`
	FreezeUsed    bool      `json:"freeze_used"`
	FreezeWeekISO string    `json:"freeze_week_iso,omitempty"`
}

// BonusMultiplier is the streak reward factor: +5% per consecutive day,
// capped at +50%.
func (s Streak) BonusMultiplier() float64 {
	days := s.CurrentDays
	if days > 10 {
		days = 10
	}
	return 1.0 + float64(days)*0.05
}

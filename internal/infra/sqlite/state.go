package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

// stateKey is the impact_state row holding the JSON state blob.
const stateKey = "impact_state_v1"

// LoadState reads the persisted impact state, merging stored JSON over
// defaults: unknown fields in the blob are ignored, missing fields keep
// their zero defaults. A fresh install returns the default state.
func (d *DB) LoadState() (domain.ImpactState, error) {
	var state domain.ImpactState

	raw, err := d.getKV(stateKey)
	if err != nil {
		return state, fmt.Errorf("load impact state: %w", err)
	}
	if raw == "" {
		return state, nil // First use — defaults
	}

	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// A corrupt blob degrades to defaults rather than wedging the app.
		return domain.ImpactState{}, nil
	}

	events, err := d.RecentEvents(domain.HistoryLimit)
	if err != nil {
		return state, fmt.Errorf("load event history: %w", err)
	}
	state.History = events

	coupons, err := d.ListRedeemedCoupons()
	if err != nil {
		return state, fmt.Errorf("load redeemed coupons: %w", err)
	}
	state.RedeemedCoupons = coupons
	return state, nil
}

// SaveState persists the impact state blob. Event history and redeemed
// coupons live in their own tables, not in the blob.
func (d *DB) SaveState(state domain.ImpactState) error {
	state.History = nil
	state.RedeemedCoupons = nil
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal impact state: %w", err)
	}
	return d.setKV(stateKey, string(raw))
}

// ─── Event History ──────────────────────────────────────────────────────────

// AppendEvent records an impact event and prunes the history beyond the
// retention limit.
func (d *DB) AppendEvent(ev domain.ImpactEvent) error {
	_, err := d.db.Exec(
		`INSERT INTO impact_events (id, kind, pillar, description, carbon_saved, points, money_saved, timestamp, verified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Kind), string(ev.Pillar), ev.Description,
		ev.CarbonSavedGrams, ev.Points, ev.MoneySavedINR,
		ev.Timestamp.Unix(), ev.Verified,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	// Keep the most recent HistoryLimit rows
	_, err = d.db.Exec(
		`DELETE FROM impact_events WHERE id NOT IN (
			SELECT id FROM impact_events ORDER BY timestamp DESC, id DESC LIMIT ?
		)`, domain.HistoryLimit,
	)
	return err
}

// RecentEvents returns up to limit events, most recent first.
func (d *DB) RecentEvents(limit int) ([]domain.ImpactEvent, error) {
	rows, err := d.db.Query(
		`SELECT id, kind, pillar, description, carbon_saved, points, money_saved, timestamp, verified
		 FROM impact_events ORDER BY timestamp DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.ImpactEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func scanEvent(s scanner) (*domain.ImpactEvent, error) {
	var ev domain.ImpactEvent
	var ts int64
	err := s.Scan(&ev.ID, &ev.Kind, &ev.Pillar, &ev.Description,
		&ev.CarbonSavedGrams, &ev.Points, &ev.MoneySavedINR, &ts, &ev.Verified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ev.Timestamp = time.Unix(ts, 0)
	return &ev, nil
}

// ─── Trips ──────────────────────────────────────────────────────────────────

// InsertTrip records a completed live-tracked trip.
func (d *DB) InsertTrip(t domain.TripLog) error {
	_, err := d.db.Exec(
		`INSERT INTO trips (id, mode, from_label, to_label, distance_km, carbon_g, saved_g, money_saved, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Mode), t.From, t.To, t.DistanceKm,
		t.CarbonGrams, t.CarbonSavedGrams, t.MoneySavedINR,
		t.StartedAt.Unix(), t.EndedAt.Unix(),
	)
	return err
}

// ListTrips returns completed trips ordered by end time descending.
func (d *DB) ListTrips(limit int) ([]domain.TripLog, error) {
	rows, err := d.db.Query(
		`SELECT id, mode, from_label, to_label, distance_km, carbon_g, saved_g, money_saved, started_at, ended_at
		 FROM trips ORDER BY ended_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []domain.TripLog
	for rows.Next() {
		var t domain.TripLog
		var started, ended int64
		if err := rows.Scan(&t.ID, &t.Mode, &t.From, &t.To, &t.DistanceKm,
			&t.CarbonGrams, &t.CarbonSavedGrams, &t.MoneySavedINR, &started, &ended); err != nil {
			return nil, err
		}
		t.StartedAt = time.Unix(started, 0)
		t.EndedAt = time.Unix(ended, 0)
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

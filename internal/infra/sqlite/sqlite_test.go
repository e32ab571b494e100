package sqlite

import (
	"fmt"
	"testing"
	"time"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadState_FreshInstall(t *testing.T) {
	db := newTestDB(t)

	state, err := db.LoadState()
	if err != nil {
		t.Fatal(err)
	}
	if state.IQ() != 0 {
		t.Errorf("fresh IQ = %d, want 0", state.IQ())
	}
	if state.Tier() != domain.TierBronze {
		t.Errorf("fresh tier = %s, want Bronze", state.Tier())
	}
	if len(state.History) != 0 {
		t.Errorf("fresh history length = %d, want 0", len(state.History))
	}
}

func TestSaveLoadState_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	in := domain.ImpactState{
		Pillars: domain.PillarScores{
			Environmental: 42.5,
			Social:        10,
			Economic:      33.25,
		},
		TotalCarbonSavedGrams: 15400,
		TotalPoints:           128.5,
		GreenCredits:          6.43,
		PurchaseCount:         3,
		TransitCount:          7,
		VerificationCount:     5,
	}
	if err := db.SaveState(in); err != nil {
		t.Fatal(err)
	}

	out, err := db.LoadState()
	if err != nil {
		t.Fatal(err)
	}
	if out.Pillars != in.Pillars {
		t.Errorf("pillars = %+v, want %+v", out.Pillars, in.Pillars)
	}
	if out.TotalCarbonSavedGrams != in.TotalCarbonSavedGrams {
		t.Errorf("carbon = %v, want %v", out.TotalCarbonSavedGrams, in.TotalCarbonSavedGrams)
	}
	if out.GreenCredits != in.GreenCredits {
		t.Errorf("credits = %v, want %v", out.GreenCredits, in.GreenCredits)
	}
	if out.TransitCount != 7 || out.PurchaseCount != 3 || out.VerificationCount != 5 {
		t.Errorf("counters = %d/%d/%d, want 7/3/5",
			out.TransitCount, out.PurchaseCount, out.VerificationCount)
	}
}

func TestLoadState_IncludesRedeemedCoupons(t *testing.T) {
	db := newTestDB(t)

	if err := db.SaveState(domain.ImpactState{}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.RedeemCoupon("GREEN50", time.Now()); err != nil {
		t.Fatal(err)
	}

	state, err := db.LoadState()
	if err != nil {
		t.Fatal(err)
	}
	if len(state.RedeemedCoupons) != 1 || state.RedeemedCoupons[0] != "GREEN50" {
		t.Errorf("redeemed coupons = %v, want [GREEN50]", state.RedeemedCoupons)
	}
}

func TestAppendEvent_PrunesBeyondLimit(t *testing.T) {
	db := newTestDB(t)

	base := time.Now().Add(-48 * time.Hour)
	for i := 0; i < domain.HistoryLimit+20; i++ {
		ev := domain.ImpactEvent{
			ID:        fmt.Sprintf("ev-%03d", i),
			Kind:      domain.EventPhoto,
			Pillar:    domain.PillarEnvironmental,
			Points:    1,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.AppendEvent(ev); err != nil {
			t.Fatal(err)
		}
	}

	events, err := db.RecentEvents(domain.HistoryLimit * 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != domain.HistoryLimit {
		t.Fatalf("retained events = %d, want %d", len(events), domain.HistoryLimit)
	}
	if events[0].ID != "ev-119" {
		t.Errorf("newest event = %s, want ev-119", events[0].ID)
	}
	// The oldest 20 were pruned.
	if events[len(events)-1].ID != "ev-020" {
		t.Errorf("oldest retained = %s, want ev-020", events[len(events)-1].ID)
	}
}

func TestEventRoundTrip(t *testing.T) {
	db := newTestDB(t)

	ts := time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)
	in := domain.ImpactEvent{
		ID:               "ev-1",
		Kind:             domain.EventTransit,
		Pillar:           domain.PillarEnvironmental,
		Description:      "metro commute",
		CarbonSavedGrams: 850,
		Points:           12,
		MoneySavedINR:    140.5,
		Timestamp:        ts,
		Verified:         true,
	}
	if err := db.AppendEvent(in); err != nil {
		t.Fatal(err)
	}

	events, err := db.RecentEvents(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	got := events[0]
	if got.Kind != in.Kind || got.Description != in.Description ||
		got.CarbonSavedGrams != in.CarbonSavedGrams || got.MoneySavedINR != in.MoneySavedINR {
		t.Errorf("event = %+v, want %+v", got, in)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, ts)
	}
	if !got.Verified {
		t.Error("verified flag lost")
	}
}

func TestTrips_InsertAndList(t *testing.T) {
	db := newTestDB(t)

	now := time.Now().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		trip := domain.TripLog{
			ID:               fmt.Sprintf("trip-%d", i),
			Mode:             domain.ModeMetro,
			From:             "MG Road",
			To:               "Indiranagar",
			DistanceKm:       5.4,
			CarbonGrams:      189,
			CarbonSavedGrams: 459,
			MoneySavedINR:    75.6,
			StartedAt:        now.Add(time.Duration(i) * time.Hour),
			EndedAt:          now.Add(time.Duration(i)*time.Hour + 20*time.Minute),
		}
		if err := db.InsertTrip(trip); err != nil {
			t.Fatal(err)
		}
	}

	trips, err := db.ListTrips(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(trips) != 2 {
		t.Fatalf("trips = %d, want limit of 2", len(trips))
	}
	if trips[0].ID != "trip-2" {
		t.Errorf("newest trip = %s, want trip-2", trips[0].ID)
	}
	if trips[0].From != "MG Road" || trips[0].DistanceKm != 5.4 {
		t.Errorf("trip fields lost: %+v", trips[0])
	}
}

func TestRedeemCoupon_Idempotent(t *testing.T) {
	db := newTestDB(t)

	first, err := db.RedeemCoupon("METRO100", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !first {
		t.Error("first redemption should report newly redeemed")
	}

	second, err := db.RedeemCoupon("METRO100", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if second {
		t.Error("second redemption should report already redeemed")
	}

	redeemed, err := db.IsCouponRedeemed("METRO100")
	if err != nil {
		t.Fatal(err)
	}
	if !redeemed {
		t.Error("coupon should be marked redeemed")
	}
}

func TestHabitLog_OncePerDay(t *testing.T) {
	db := newTestDB(t)

	ok, err := db.MarkHabitLogged("reusable-bottle", "2025-06-10")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("first log of the day should succeed")
	}

	ok, err = db.MarkHabitLogged("reusable-bottle", "2025-06-10")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second log same day should be rejected")
	}

	ok, err = db.MarkHabitLogged("reusable-bottle", "2025-06-11")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("next day should succeed again")
	}
}

func TestScanLog_CountsAndLastScan(t *testing.T) {
	db := newTestDB(t)

	now := time.Now().Truncate(time.Second)
	if err := db.RecordScan("8901234567890", now.Add(-2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordScan("8901234567891", now.Add(-30*time.Minute)); err != nil {
		t.Fatal(err)
	}

	count, err := db.ScansSince(now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("scans in last hour = %d, want 1", count)
	}

	last, err := db.LastScanOf("8901234567890")
	if err != nil {
		t.Fatal(err)
	}
	if !last.Equal(now.Add(-2 * time.Hour)) {
		t.Errorf("last scan = %v, want %v", last, now.Add(-2*time.Hour))
	}

	never, err := db.LastScanOf("0000000000000")
	if err != nil {
		t.Fatal(err)
	}
	if !never.IsZero() {
		t.Errorf("unscanned barcode should return zero time, got %v", never)
	}
}

func TestMeta_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	val, err := db.GetMeta("streak_current")
	if err != nil {
		t.Fatal(err)
	}
	if val != "" {
		t.Errorf("missing key = %q, want empty", val)
	}

	if err := db.SetMeta("streak_current", "7"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMeta("streak_current", "8"); err != nil {
		t.Fatal(err)
	}

	val, err = db.GetMeta("streak_current")
	if err != nil {
		t.Fatal(err)
	}
	if val != "8" {
		t.Errorf("meta value = %q, want 8 (last write wins)", val)
	}
}

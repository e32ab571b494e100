package rewards

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lumeiq-app/lumeiq/internal/domain"
	"github.com/lumeiq-app/lumeiq/internal/infra/sqlite"
)

type fixedState struct {
	state domain.ImpactState
}

func (f fixedState) State() (domain.ImpactState, error) { return f.state, nil }

// stateWithIQ builds a state whose derived IQ equals roughly the target by
// setting all three pillars to it.
func stateWithIQ(iq float64) fixedState {
	return fixedState{state: domain.ImpactState{
		Pillars: domain.PillarScores{Environmental: iq, Social: iq, Economic: iq},
	}}
}

func newTestService(t *testing.T, states StateReader) *Service {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(db, states)
}

func TestRedeem_TierGating(t *testing.T) {
	tests := []struct {
		name    string
		iq      float64
		code    string
		wantErr error
	}{
		{"bronze unlocks GREEN50", 30, "GREEN50", nil},
		{"below GREEN50 threshold", 20, "GREEN50", domain.ErrTierTooLow},
		{"silver unlocks METRO100", 55, "METRO100", nil},
		{"silver cannot take TERRA200", 55, "TERRA200", domain.ErrTierTooLow},
		{"platinum takes ECOFI500", 90, "ECOFI500", nil},
		{"unknown code", 90, "FREEMONEY", domain.ErrCouponNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, stateWithIQ(tt.iq))
			coupon, err := svc.Redeem(tt.code)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Redeem(%s) at IQ %.0f = %v, want %v", tt.code, tt.iq, err, tt.wantErr)
			}
			if tt.wantErr == nil && coupon.Code != tt.code {
				t.Errorf("redeemed %q, want %q", coupon.Code, tt.code)
			}
		})
	}
}

func TestRedeem_OnlyOnce(t *testing.T) {
	svc := newTestService(t, stateWithIQ(90))
	if _, err := svc.Redeem("METRO100"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Redeem("METRO100"); !errors.Is(err, domain.ErrCouponRedeemed) {
		t.Errorf("second redeem = %v, want ErrCouponRedeemed", err)
	}
}

func TestCatalog_Status(t *testing.T) {
	svc := newTestService(t, stateWithIQ(55))
	if _, err := svc.Redeem("GREEN50"); err != nil {
		t.Fatal(err)
	}

	entries, err := svc.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("%d catalog entries, want 4", len(entries))
	}
	byCode := map[string]CatalogEntry{}
	for _, e := range entries {
		byCode[e.Code] = e
	}
	if !byCode["GREEN50"].Redeemed {
		t.Error("GREEN50 should show as redeemed")
	}
	if !byCode["METRO100"].Unlocked || byCode["METRO100"].Redeemed {
		t.Error("METRO100 should be unlocked and unredeemed at IQ 55")
	}
	if byCode["TERRA200"].Unlocked || byCode["ECOFI500"].Unlocked {
		t.Error("gold and platinum coupons should stay locked at IQ 55")
	}
}

func TestLogHabit_OncePerDay(t *testing.T) {
	svc := newTestService(t, stateWithIQ(50))
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	if err := svc.LogHabit(domain.ActionPlantBased); err != nil {
		t.Fatal(err)
	}
	if err := svc.LogHabit(domain.ActionPlantBased); !errors.Is(err, domain.ErrAlreadyLogged) {
		t.Errorf("same-day repeat = %v, want ErrAlreadyLogged", err)
	}
	// a different habit the same day is fine
	if err := svc.LogHabit(domain.ActionMinimal); err != nil {
		t.Errorf("different habit same day = %v, want nil", err)
	}
	// next day resets
	svc.now = func() time.Time { return base.Add(24 * time.Hour) }
	if err := svc.LogHabit(domain.ActionPlantBased); err != nil {
		t.Errorf("next-day log = %v, want nil", err)
	}
}

func TestCheckScan_Cooldown(t *testing.T) {
	svc := newTestService(t, stateWithIQ(50))
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	if err := svc.CheckScan("8901234567890"); err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return base.Add(time.Hour) }
	if err := svc.CheckScan("8901234567890"); !errors.Is(err, domain.ErrScanCooldown) {
		t.Errorf("rescan after 1h = %v, want ErrScanCooldown", err)
	}
	// another product is unaffected
	if err := svc.CheckScan("8900000000001"); err != nil {
		t.Errorf("different barcode = %v, want nil", err)
	}
	// after the cooldown the same product scans again
	svc.now = func() time.Time { return base.Add(ScanCooldown + time.Minute) }
	if err := svc.CheckScan("8901234567890"); err != nil {
		t.Errorf("rescan after cooldown = %v, want nil", err)
	}
}

func TestCheckScan_DailyLimit(t *testing.T) {
	svc := newTestService(t, stateWithIQ(50))
	base := time.Date(2025, 6, 1, 0, 30, 0, 0, time.UTC)

	for i := 0; i < MaxScansPerDay; i++ {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		if err := svc.CheckScan(barcode(i)); err != nil {
			t.Fatalf("scan %d: %v", i, err)
		}
	}
	svc.now = func() time.Time { return base.Add(time.Hour) }
	if err := svc.CheckScan("8909999999999"); !errors.Is(err, domain.ErrScanLimit) {
		t.Errorf("scan over the daily cap = %v, want ErrScanLimit", err)
	}
}

func barcode(i int) string {
	return fmt.Sprintf("89012345678%02d", i)
}

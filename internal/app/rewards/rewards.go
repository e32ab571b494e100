// Package rewards handles the redemption surface of the impact economy:
// the tier-gated coupon catalog, once-per-day habit logging, and the scan
// abuse limits on product lookups.
package rewards

import (
	"fmt"
	"log"
	"time"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

// Scan abuse limits. A barcode can be rewarded again only after the
// cooldown, and total rewarded scans are capped per calendar day.
const (
	ScanCooldown   = 4 * time.Hour
	MaxScansPerDay = 10
)

// Coupon is one redeemable reward. MinIQ gates redemption; the catalog is
// fixed at build time.
type Coupon struct {
	Code     string      `json:"code"`
	Title    string      `json:"title"`
	ValueINR float64     `json:"value_inr"`
	MinIQ    int         `json:"min_iq"`
	Tier     domain.Tier `json:"tier"`
}

// catalog lists every coupon in ascending unlock order.
var catalog = []Coupon{
	{Code: "GREEN50", Title: "₹50 off at partner eco stores", ValueINR: 50, MinIQ: 30, Tier: domain.TierBronze},
	{Code: "METRO100", Title: "₹100 metro travel credit", ValueINR: 100, MinIQ: 50, Tier: domain.TierSilver},
	{Code: "TERRA200", Title: "₹200 sustainable brand voucher", ValueINR: 200, MinIQ: 70, Tier: domain.TierGold},
	{Code: "ECOFI500", Title: "₹500 green savings bonus", ValueINR: 500, MinIQ: 85, Tier: domain.TierPlatinum},
}

// RewardStore is the persistence surface the service needs. Satisfied by
// the sqlite store.
type RewardStore interface {
	RedeemCoupon(code string, at time.Time) (bool, error)
	IsCouponRedeemed(code string) (bool, error)
	MarkHabitLogged(tag, day string) (bool, error)
	RecordScan(barcode string, at time.Time) error
	ScansSince(since time.Time) (int, error)
	LastScanOf(barcode string) (time.Time, error)
}

// StateReader exposes the current impact state. Satisfied by score.Service.
type StateReader interface {
	State() (domain.ImpactState, error)
}

// Service gates redemptions against the live impact state.
type Service struct {
	store  RewardStore
	states StateReader
	now    func() time.Time
}

// NewService wires a rewards service.
func NewService(store RewardStore, states StateReader) *Service {
	return &Service{store: store, states: states, now: time.Now}
}

// CatalogEntry is a coupon annotated with the caller's standing.
type CatalogEntry struct {
	Coupon
	Unlocked bool `json:"unlocked"`
	Redeemed bool `json:"redeemed"`
}

// Catalog returns every coupon with unlock and redemption status for the
// current impact state.
func (s *Service) Catalog() ([]CatalogEntry, error) {
	state, err := s.states.State()
	if err != nil {
		return nil, fmt.Errorf("reading impact state: %w", err)
	}
	iq := state.IQ()

	entries := make([]CatalogEntry, 0, len(catalog))
	for _, c := range catalog {
		redeemed, err := s.store.IsCouponRedeemed(c.Code)
		if err != nil {
			return nil, fmt.Errorf("checking coupon %s: %w", c.Code, err)
		}
		entries = append(entries, CatalogEntry{
			Coupon:   c,
			Unlocked: iq >= c.MinIQ,
			Redeemed: redeemed,
		})
	}
	return entries, nil
}

// Redeem claims a coupon. The coupon must exist, the current Impact IQ must
// meet its threshold, and each coupon redeems at most once.
func (s *Service) Redeem(code string) (Coupon, error) {
	var coupon Coupon
	found := false
	for _, c := range catalog {
		if c.Code == code {
			coupon = c
			found = true
			break
		}
	}
	if !found {
		return Coupon{}, fmt.Errorf("%w: %q", domain.ErrCouponNotFound, code)
	}

	state, err := s.states.State()
	if err != nil {
		return Coupon{}, fmt.Errorf("reading impact state: %w", err)
	}
	if iq := state.IQ(); iq < coupon.MinIQ {
		return Coupon{}, fmt.Errorf("%w: need IQ %d, have %d", domain.ErrTierTooLow, coupon.MinIQ, iq)
	}

	newlyRedeemed, err := s.store.RedeemCoupon(code, s.now())
	if err != nil {
		return Coupon{}, fmt.Errorf("redeeming %s: %w", code, err)
	}
	if !newlyRedeemed {
		return Coupon{}, domain.ErrCouponRedeemed
	}

	log.Printf("[rewards] coupon %s redeemed (₹%.0f)", code, coupon.ValueINR)
	return coupon, nil
}

// LogHabit records a daily habit action. Each tag counts once per calendar
// day; a repeat returns ErrAlreadyLogged so the caller can tell the user
// without treating it as a failure.
func (s *Service) LogHabit(tag domain.ActionTag) error {
	day := s.now().Format("2006-01-02")
	logged, err := s.store.MarkHabitLogged(string(tag), day)
	if err != nil {
		return fmt.Errorf("logging habit %s: %w", tag, err)
	}
	if !logged {
		return domain.ErrAlreadyLogged
	}
	return nil
}

// CheckScan enforces the scan abuse limits for a barcode and, when allowed,
// records the scan. A barcode rescanned within the cooldown returns
// ErrScanCooldown; more than the daily cap returns ErrScanLimit.
func (s *Service) CheckScan(barcode string) error {
	now := s.now()

	last, err := s.store.LastScanOf(barcode)
	if err != nil {
		return fmt.Errorf("checking scan history: %w", err)
	}
	if !last.IsZero() && now.Sub(last) < ScanCooldown {
		return fmt.Errorf("%w: wait %s", domain.ErrScanCooldown,
			(ScanCooldown - now.Sub(last)).Round(time.Minute))
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := s.store.ScansSince(midnight)
	if err != nil {
		return fmt.Errorf("counting scans: %w", err)
	}
	if count >= MaxScansPerDay {
		return domain.ErrScanLimit
	}

	if err := s.store.RecordScan(barcode, now); err != nil {
		return fmt.Errorf("recording scan: %w", err)
	}
	return nil
}

package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Verification
// outcomes are result values, not errors: nothing in the verification
// pipeline is surfaced through this list.

var (
	// Session errors
	ErrSessionActive   = errors.New("an activity session is already running")
	ErrNoActiveSession = errors.New("no activity session is running")
	ErrRouteRequired   = errors.New("activity requires both origin and destination")
	ErrUnknownActivity = errors.New("unknown activity kind")

	// Trip errors
	ErrTripActive   = errors.New("a live trip is already being tracked")
	ErrNoActiveTrip = errors.New("no live trip is being tracked")
	ErrTripTooShort = errors.New("trip too short to log")

	// Routing errors
	ErrNoRoute       = errors.New("no route found between the given points")
	ErrRouterOffline = errors.New("routing service unreachable")

	// Rewards errors
	ErrCouponNotFound = errors.New("coupon code not found")
	ErrCouponRedeemed = errors.New("coupon already redeemed")
	ErrTierTooLow     = errors.New("impact score below coupon requirement")
	ErrAlreadyLogged  = errors.New("action already logged today")
	ErrScanLimit      = errors.New("daily scan limit reached")
	ErrScanCooldown   = errors.New("product scanned too recently")
)

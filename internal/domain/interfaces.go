package domain

import "context"

// ─── Collaborator Interfaces ────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// VisionProvider abstracts the external image classification capability.
// Implementations return the raw detected labels (scene labels, localized
// objects, web entities) lowercased. Any transport, auth, or quota failure
// is returned as an error; the verification adapter maps it to the
// fallback-approved result.
type VisionProvider interface {
	Annotate(ctx context.Context, imageBytes []byte) ([]string, error)
}

// Router abstracts the routing collaborator: origin/destination plus a mode
// yields distance, duration, and route geometry. A mode with no route
// returns ErrNoRoute and is simply excluded from the candidate set.
type Router interface {
	Route(ctx context.Context, from, to Position, mode TransportMode) (*RouteLeg, error)
}

// Geocoder abstracts reverse geocoding. Failure degrades to a generic
// placeholder label at the call site, never blocks routing.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, pos Position) (string, error)
}

// PositionWatcher abstracts the continuous geolocation subscription. Watch
// invokes fn for every fix until the returned unsubscribe func is called.
// Stop paths must unsubscribe to avoid leaking the underlying watch.
type PositionWatcher interface {
	Watch(ctx context.Context, fn func(Position)) (unsubscribe func(), err error)
}

// StateStore abstracts the persistence collaborator for the impact state.
// Load returns defaults when nothing has been stored yet; stored JSON is
// merged over defaults so unknown or missing fields stay forward-compatible.
type StateStore interface {
	LoadState() (ImpactState, error)
	SaveState(ImpactState) error
	AppendEvent(ImpactEvent) error
	RecentEvents(limit int) ([]ImpactEvent, error)
}

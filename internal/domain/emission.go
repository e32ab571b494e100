package domain

// TransportMode identifies a way of covering a route.
type TransportMode string

const (
	ModeCar       TransportMode = "car"
	ModeMotorbike TransportMode = "motorbike"
	ModeBus       TransportMode = "bus"
	ModeMetro     TransportMode = "metro"
	ModeCycle     TransportMode = "cycle"
	ModeWalk      TransportMode = "walk"
)

// EmissionProfile is the static per-mode emission and cost table.
// Savings are always benchmarked against the car profile.
type EmissionProfile struct {
	Mode          TransportMode `json:"mode"`
	GramsCO2PerKm float64       `json:"grams_co2_per_km"`
	CostPerKm     float64       `json:"cost_per_km"` // INR
	SpeedKmh      float64       `json:"speed_kmh"`   // urban average, for duration estimates
}

// emissionProfiles holds the canonical factors. Cycle and walk are
// zero-emission and zero-cost.
var emissionProfiles = map[TransportMode]EmissionProfile{
	ModeCar:       {Mode: ModeCar, GramsCO2PerKm: 120, CostPerKm: 18, SpeedKmh: 30},
	ModeMotorbike: {Mode: ModeMotorbike, GramsCO2PerKm: 80, CostPerKm: 6, SpeedKmh: 25},
	ModeBus:       {Mode: ModeBus, GramsCO2PerKm: 50, CostPerKm: 3, SpeedKmh: 20},
	ModeMetro:     {Mode: ModeMetro, GramsCO2PerKm: 35, CostPerKm: 4, SpeedKmh: 35},
	ModeCycle:     {Mode: ModeCycle, GramsCO2PerKm: 0, CostPerKm: 0, SpeedKmh: 15},
	ModeWalk:      {Mode: ModeWalk, GramsCO2PerKm: 0, CostPerKm: 0, SpeedKmh: 5},
}

// ProfileFor returns the emission profile for a mode. Unknown modes fall
// back to the car baseline so a stray mode never under-reports emissions.
func ProfileFor(mode TransportMode) EmissionProfile {
	if p, ok := emissionProfiles[mode]; ok {
		return p
	}
	return emissionProfiles[ModeCar]
}

// AllModes lists the supported modes in display order.
func AllModes() []TransportMode {
	return []TransportMode{ModeCar, ModeMotorbike, ModeBus, ModeMetro, ModeCycle, ModeWalk}
}

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteLeg is what the routing collaborator returns for one mode.
type RouteLeg struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
	Polyline    string  `json:"polyline"`
}

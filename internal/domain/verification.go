package domain

import "time"

// ─── Verification Types ─────────────────────────────────────────────────────

// VerificationStage is the terminal state of the verification pipeline.
type VerificationStage string

const (
	StageMetadataRejected VerificationStage = "metadata-rejected"
	StageVisionVerified   VerificationStage = "vision-verified"
	StageVisionRejected   VerificationStage = "vision-rejected"
	StageOfflineApproved  VerificationStage = "offline-approved"
)

// VerificationResult is the pipeline's final decision. A metadata rejection
// short-circuits: Accepted is false unconditionally and the vision stage
// never runs.
type VerificationResult struct {
	Stage         VerificationStage `json:"stage"`
	Confidence    int               `json:"confidence"` // 0–100
	MatchedLabels []string          `json:"matched_labels"`
	Accepted      bool              `json:"accepted"`
	Reason        string            `json:"reason"`
}

// MetadataVerdict is the structured outcome of inspecting a photo's embedded
// capture metadata. An image with no metadata at all yields the neutral
// verdict: IsValid true, every flag false.
type MetadataVerdict struct {
	IsValid      bool      `json:"is_valid"`
	IsFresh      bool      `json:"is_fresh"`
	IsFromCamera bool      `json:"is_from_camera"`
	HasGPS       bool      `json:"has_gps"`
	HasTimestamp bool      `json:"has_timestamp"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
	Latitude     float64   `json:"latitude,omitempty"`
	Longitude    float64   `json:"longitude,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
}

// ActionTag names a verifiable eco action and selects the keyword set the
// vision stage matches detected labels against.
type ActionTag string

const (
	ActionEcoPurchase ActionTag = "eco-purchase"
	ActionTransit     ActionTag = "transit-proof"
	ActionRecycling   ActionTag = "recycling-proof"
	ActionPlantBased  ActionTag = "plant-based"
	ActionThrift      ActionTag = "thrift"
	ActionRepair      ActionTag = "repair"
	ActionMinimal     ActionTag = "minimal"
)

// ─── Session & Trip Types ───────────────────────────────────────────────────

// ActivityKind names a continuous timed activity.
type ActivityKind string

const (
	ActivityWalking   ActivityKind = "walking"
	ActivityCycling   ActivityKind = "cycling"
	ActivityCommuting ActivityKind = "commuting"
	ActivityJogging   ActivityKind = "jogging"
)

// ActivityRate converts elapsed session time into CO2 saved and points.
type ActivityRate struct {
	CO2PerMinute    float64 `json:"co2_per_minute"` // grams
	PointsPerMinute float64 `json:"points_per_minute"`
	NeedsRoute      bool    `json:"needs_route"` // origin/destination required at start
	Economic        bool    `json:"economic"`    // also credits the economic pillar
}

// ActiveSession exists only while a timer runs. At most one per user;
// destroyed on stop, producing exactly one ImpactEvent.
type ActiveSession struct {
	Kind        ActivityKind `json:"kind"`
	Origin      string       `json:"origin,omitempty"`
	Destination string       `json:"destination,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
}

// TripLog is the durable record of a completed live-tracked trip.
type TripLog struct {
	ID               string        `json:"id"`
	Mode             TransportMode `json:"mode"`
	From             string        `json:"from"`
	To               string        `json:"to"`
	DistanceKm       float64       `json:"distance_km"`
	CarbonGrams      float64       `json:"carbon_grams"`
	CarbonSavedGrams float64       `json:"carbon_saved_grams"`
	MoneySavedINR    float64       `json:"money_saved_inr"`
	StartedAt        time.Time     `json:"started_at"`
	EndedAt          time.Time     `json:"ended_at"`
}

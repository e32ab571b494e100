package verify

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumeiq-app/lumeiq/internal/domain"
	"github.com/lumeiq-app/lumeiq/internal/infra/metrics"
)

// EventApplier folds a verified proof into the persistent impact state.
// Satisfied by score.Service.
type EventApplier interface {
	ApplyEvent(ev domain.ImpactEvent) (domain.ImpactState, error)
}

// Progress receives staged status updates while a verification runs, so a
// caller can surface "analyzing photo..." style feedback. May be nil.
type Progress func(status string)

// actionProfile fixes the reward shape of each verifiable action.
type actionProfile struct {
	BasePoints  float64
	CarbonGrams float64 // estimated CO2 avoided by the proven action
	Pillar      domain.Pillar
	Kind        domain.EventKind
	Label       string
}

var actionProfiles = map[domain.ActionTag]actionProfile{
	domain.ActionEcoPurchase: {
		BasePoints: 5, CarbonGrams: 150,
		Pillar: domain.PillarEconomic, Kind: domain.EventPurchase,
		Label: "Eco-friendly purchase",
	},
	domain.ActionTransit: {
		BasePoints: 8, CarbonGrams: 500,
		Pillar: domain.PillarEnvironmental, Kind: domain.EventPhoto,
		Label: "Public transit trip",
	},
	domain.ActionRecycling: {
		BasePoints: 4, CarbonGrams: 120,
		Pillar: domain.PillarEnvironmental, Kind: domain.EventPhoto,
		Label: "Recycling drop-off",
	},
	domain.ActionPlantBased: {
		BasePoints: 6, CarbonGrams: 800,
		Pillar: domain.PillarEnvironmental, Kind: domain.EventPhoto,
		Label: "Plant-based meal",
	},
	domain.ActionThrift: {
		BasePoints: 5, CarbonGrams: 600,
		Pillar: domain.PillarSocial, Kind: domain.EventPhoto,
		Label: "Second-hand find",
	},
	domain.ActionRepair: {
		BasePoints: 7, CarbonGrams: 400,
		Pillar: domain.PillarSocial, Kind: domain.EventPhoto,
		Label: "Repaired instead of replaced",
	},
	domain.ActionMinimal: {
		BasePoints: 4, CarbonGrams: 100,
		Pillar: domain.PillarEnvironmental, Kind: domain.EventPhoto,
		Label: "Reusable over disposable",
	},
}

// metadataChecker is the stage-one gate; *MetadataVerifier in production.
type metadataChecker interface {
	Verify(imageBytes []byte) domain.MetadataVerdict
}

// Pipeline chains the metadata gate and the vision stage, awarding points
// and emitting exactly one impact event per accepted proof.
type Pipeline struct {
	meta       metadataChecker
	classifier *Classifier
	applier    EventApplier
	now        func() time.Time
}

// NewPipeline wires a pipeline with the default metadata verifier.
func NewPipeline(classifier *Classifier, applier EventApplier) *Pipeline {
	return &Pipeline{
		meta:       NewMetadataVerifier(),
		classifier: classifier,
		applier:    applier,
		now:        time.Now,
	}
}

// Outcome is the full result of one verification run.
type Outcome struct {
	Result   domain.VerificationResult
	Metadata domain.MetadataVerdict
	Event    *domain.ImpactEvent
	State    *domain.ImpactState
}

// Verify runs the staged pipeline for one captured photo.
//
// Stage 1 (metadata) is a hard gate: a photo that carries metadata proving
// it is stale or edited is rejected without ever reaching the network.
// Stage 2 (vision) classifies against the action's vocabulary; any failure
// to reach the provider degrades to offline approval. Acceptance awards
// base points plus a confidence bonus and mutates the impact state once.
func (p *Pipeline) Verify(ctx context.Context, imageBytes []byte, tag domain.ActionTag, progress Progress) (Outcome, error) {
	profile, ok := actionProfiles[tag]
	if !ok {
		return Outcome{}, fmt.Errorf("unknown action %q", tag)
	}

	report(progress, "checking photo metadata...")
	verdict := p.meta.Verify(imageBytes)
	if !verdict.IsValid {
		metrics.Verifications.WithLabelValues(string(domain.StageMetadataRejected)).Inc()
		return Outcome{
			Result: domain.VerificationResult{
				Stage:  domain.StageMetadataRejected,
				Reason: Explain(verdict),
			},
			Metadata: verdict,
		}, nil
	}

	report(progress, "analyzing photo...")
	cls := p.classifier.Classify(ctx, imageBytes, tag)
	if cls.Fallback {
		report(progress, "image analysis unreachable — approved offline")
	}

	stage := domain.StageVisionVerified
	switch {
	case cls.Fallback:
		stage = domain.StageOfflineApproved
	case !cls.Verified:
		stage = domain.StageVisionRejected
	}
	metrics.Verifications.WithLabelValues(string(stage)).Inc()

	result := domain.VerificationResult{
		Stage:         stage,
		Confidence:    cls.Confidence,
		MatchedLabels: cls.MatchedLabels,
		Accepted:      cls.Verified,
	}
	if stage == domain.StageVisionRejected {
		result.Reason = fmt.Sprintf("photo does not look like %s (saw: %s)",
			profile.Label, summarizeLabels(cls.Labels))
		return Outcome{Result: result, Metadata: verdict}, nil
	}

	points := profile.BasePoints + math.Round(float64(cls.Confidence)/20)
	ev := domain.ImpactEvent{
		ID:               uuid.NewString(),
		Kind:             profile.Kind,
		Pillar:           profile.Pillar,
		Description:      profile.Label,
		CarbonSavedGrams: profile.CarbonGrams,
		Points:           points,
		Timestamp:        p.now(),
		Verified:         result.Accepted,
	}

	report(progress, "recording your impact...")
	state, err := p.applier.ApplyEvent(ev)
	if err != nil {
		return Outcome{Result: result, Metadata: verdict}, fmt.Errorf("applying verification event: %w", err)
	}

	log.Printf("[verify] %s accepted (%s, confidence %d, +%.0f pts)",
		tag, stage, cls.Confidence, points)
	return Outcome{Result: result, Metadata: verdict, Event: &ev, State: &state}, nil
}

func report(p Progress, status string) {
	if p != nil {
		p(status)
	}
}

func summarizeLabels(labels []string) string {
	if len(labels) > 5 {
		labels = labels[:5]
	}
	if len(labels) == 0 {
		return "nothing recognizable"
	}
	return strings.Join(labels, ", ")
}

package verify

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/lumeiq-app/lumeiq/internal/domain"
	"github.com/lumeiq-app/lumeiq/internal/infra/metrics"
)

// fallbackConfidence is awarded when the vision service cannot be reached.
// Offline users are trusted at half confidence rather than blocked.
const fallbackConfidence = 50

// GoogleVision implements domain.VisionProvider against the Cloud Vision
// annotate API. It requests labels, localized objects, and web entities and
// flattens them into a single lowercase label list.
type GoogleVision struct {
	svc *vision.Service
}

// NewGoogleVision builds a provider authenticated with an API key.
func NewGoogleVision(ctx context.Context, apiKey string) (*GoogleVision, error) {
	svc, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}
	return &GoogleVision{svc: svc}, nil
}

// Annotate submits the image and returns every detected label, object name,
// and web entity as a flat lowercase list.
func (g *GoogleVision) Annotate(ctx context.Context, imageBytes []byte) ([]string, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(imageBytes)},
			Features: []*vision.Feature{
				{Type: "LABEL_DETECTION", MaxResults: 20},
				{Type: "OBJECT_LOCALIZATION", MaxResults: 10},
				{Type: "WEB_DETECTION", MaxResults: 5},
			},
		}},
	}

	resp, err := g.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("vision annotate: empty response")
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("vision annotate: %s", r.Error.Message)
	}

	var labels []string
	for _, a := range r.LabelAnnotations {
		labels = append(labels, strings.ToLower(a.Description))
	}
	for _, o := range r.LocalizedObjectAnnotations {
		labels = append(labels, strings.ToLower(o.Name))
	}
	if r.WebDetection != nil {
		for _, e := range r.WebDetection.WebEntities {
			if e.Description != "" {
				labels = append(labels, strings.ToLower(e.Description))
			}
		}
	}
	return labels, nil
}

// Classification is the outcome of the vision stage for one image.
type Classification struct {
	Verified      bool
	Confidence    int
	Labels        []string
	MatchedLabels []string
	Fallback      bool
}

// Classifier runs the vision stage. Every transport or provider failure
// degrades to the offline-approved fallback instead of surfacing an error:
// a user on a flaky connection must never lose a genuine proof.
type Classifier struct {
	provider domain.VisionProvider
}

// NewClassifier wraps a vision provider.
func NewClassifier(p domain.VisionProvider) *Classifier {
	return &Classifier{provider: p}
}

// Classify annotates the image and scores it against the action's keyword
// vocabulary. Confidence is min(100, round(100 * matched / 3)): three
// matched labels count as certainty.
func (c *Classifier) Classify(ctx context.Context, imageBytes []byte, tag domain.ActionTag) Classification {
	if c.provider == nil {
		return offlineApproved()
	}

	start := time.Now()
	labels, err := c.provider.Annotate(ctx, imageBytes)
	metrics.VisionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Printf("[verify] vision unavailable, approving offline: %v", err)
		return offlineApproved()
	}

	matched := matchLabels(labels, tag)
	confidence := int(math.Min(100, math.Round(100*float64(len(matched))/confidenceNormalizer)))
	return Classification{
		Verified:      len(matched) > 0,
		Confidence:    confidence,
		Labels:        labels,
		MatchedLabels: matched,
	}
}

func offlineApproved() Classification {
	metrics.VisionFallbacks.Inc()
	return Classification{
		Verified:      true,
		Confidence:    fallbackConfidence,
		Labels:        []string{"offline-approved"},
		MatchedLabels: []string{"offline-approved"},
		Fallback:      true,
	}
}

// Package verify implements the staged photo verification engine:
// metadata gate, vision classification, and the fallback-tolerant pipeline
// that turns an accepted proof into an impact event.
package verify

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

// FreshWindow is the maximum capture age for a photo to count as fresh.
const FreshWindow = 5 * time.Minute

// suspiciousSoftware marks editors and screenshot tools whose Software tag
// suggests the image is not a native camera capture.
var suspiciousSoftware = []string{"paint", "snip", "screenshot", "photoshop", "gimp", "canva"}

// MetadataVerifier inspects a captured image's embedded metadata. Pure:
// same bytes and clock always produce the same verdict, and it never fails —
// unreadable metadata degrades to the neutral verdict.
type MetadataVerifier struct {
	window time.Duration
	now    func() time.Time
}

// NewMetadataVerifier creates a verifier with the standard freshness window.
func NewMetadataVerifier() *MetadataVerifier {
	return &MetadataVerifier{window: FreshWindow, now: time.Now}
}

// newMetadataVerifierAt creates a verifier with an injected clock for tests.
func newMetadataVerifierAt(now func() time.Time) *MetadataVerifier {
	return &MetadataVerifier{window: FreshWindow, now: now}
}

// Verify inspects the image's embedded capture metadata.
// isValid = isFresh AND isFromCamera; GPS is a confidence booster, not a
// gate. An image carrying no metadata at all returns the neutral verdict
// (IsValid true, all flags false): absent metadata is common on non-native
// camera bridges and is not itself evidence of fraud.
func (v *MetadataVerifier) Verify(imageBytes []byte) domain.MetadataVerdict {
	var verdict domain.MetadataVerdict

	x, err := exif.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		verdict.IsValid = true // Neutral — defer the decision downstream
		verdict.Warnings = append(verdict.Warnings,
			"no capture metadata found — may be a screenshot, download, or camera-bridge image")
		return verdict
	}

	// Capture timestamp
	if ts, err := x.DateTime(); err == nil {
		verdict.HasTimestamp = true
		verdict.Timestamp = ts
		age := v.now().Sub(ts)
		switch {
		case age < 0:
			verdict.Warnings = append(verdict.Warnings,
				"photo timestamp is in the future — possible manipulation")
		case age <= v.window:
			verdict.IsFresh = true
		default:
			verdict.Warnings = append(verdict.Warnings, fmt.Sprintf(
				"photo is %d minutes old (max allowed: %d min)",
				int(math.Round(age.Minutes())), int(v.window.Minutes())))
		}
	} else {
		verdict.Warnings = append(verdict.Warnings,
			"no timestamp found — photo may be a screenshot or downloaded image")
	}

	// Camera signal: Make or Model tag marks a native capture
	camMake := tagString(x, exif.Make)
	camModel := tagString(x, exif.Model)
	software := tagString(x, exif.Software)
	if camMake != "" || camModel != "" {
		verdict.IsFromCamera = true
	} else {
		if software != "" {
			sw := strings.ToLower(software)
			for _, s := range suspiciousSoftware {
				if strings.Contains(sw, s) {
					verdict.Warnings = append(verdict.Warnings,
						"suspicious software detected: "+software)
					break
				}
			}
		}
		verdict.Warnings = append(verdict.Warnings,
			"no camera info — may not be from a real camera")
	}

	// Embedded geolocation
	if lat, lng, err := x.LatLong(); err == nil {
		verdict.HasGPS = true
		verdict.Latitude = lat
		verdict.Longitude = lng
	} else {
		verdict.Warnings = append(verdict.Warnings,
			"no GPS location — cannot verify where photo was taken")
	}

	verdict.IsValid = verdict.IsFresh && verdict.IsFromCamera
	return verdict
}

// Explain renders a user-facing summary for a verdict, used as the hard
// rejection reason and in verification status text.
func Explain(v domain.MetadataVerdict) string {
	switch {
	case v.IsValid && v.HasGPS:
		return "photo verified: fresh capture from camera with location data"
	case v.IsValid && v.HasTimestamp:
		return "photo verified: fresh capture from camera (no GPS)"
	case v.IsValid:
		return "no capture metadata — deferring to image analysis"
	case !v.HasTimestamp && !v.IsFromCamera:
		return "rejected: no capture metadata — likely downloaded or screenshot"
	case !v.IsFresh:
		return "rejected: photo is too old — must be taken within 5 minutes"
	case !v.IsFromCamera:
		return "rejected: no camera signature — may not be an original photo"
	}
	return "verification inconclusive"
}

// tagString reads a string EXIF field, returning "" when absent.
func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

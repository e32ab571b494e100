package verify

import (
	"strings"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

// confidenceNormalizer: three keyword matches count as full confidence.
const confidenceNormalizer = 3

// actionKeywords maps each verifiable action to the label vocabulary the
// vision model is expected to surface for a genuine proof photo.
var actionKeywords = map[domain.ActionTag][]string{
	domain.ActionEcoPurchase: {
		"product", "packaging", "bottle", "container", "label", "organic",
		"eco", "recyclable", "paper", "glass", "bamboo", "reusable", "shop",
		"store", "grocery",
	},
	domain.ActionTransit: {
		"bus", "train", "metro", "subway", "tram", "station", "platform",
		"ticket", "transit", "railway", "public transport", "vehicle",
		"passenger", "commute",
	},
	domain.ActionRecycling: {
		"recycle", "recycling", "bin", "waste", "trash", "garbage", "plastic",
		"bottle", "sorting", "compost", "container", "segregation",
	},
	domain.ActionPlantBased: {
		"food", "vegetable", "salad", "fruit", "plant", "vegan", "vegetarian",
		"meal", "dish", "plate", "grain", "legume", "tofu", "cuisine",
	},
	domain.ActionThrift: {
		"clothing", "clothes", "shirt", "jacket", "fabric", "textile",
		"second hand", "thrift", "vintage", "garment", "wardrobe", "apparel",
	},
	domain.ActionRepair: {
		"tool", "repair", "fix", "screwdriver", "sewing", "glue", "parts",
		"workshop", "mend", "solder", "patch", "machine",
	},
	domain.ActionMinimal: {
		"reusable", "cup", "mug", "bag", "flask", "tumbler", "cutlery",
		"straw", "cloth", "jar", "refill",
	},
}

// matchLabels returns the detected labels that match the action's keyword
// set. Matching is case-insensitive and bidirectional on substrings, so
// "water bottle" matches the keyword "bottle" and the label "eco" matches
// "ecosystem". Each label is counted at most once.
func matchLabels(labels []string, tag domain.ActionTag) []string {
	keywords := actionKeywords[tag]
	var matched []string
	seen := make(map[string]bool)
	for _, label := range labels {
		l := strings.ToLower(strings.TrimSpace(label))
		if l == "" || seen[l] {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(l, kw) || strings.Contains(kw, l) {
				matched = append(matched, l)
				seen[l] = true
				break
			}
		}
	}
	return matched
}

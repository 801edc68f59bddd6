package ladder

import (
	"math"

	"vodpacker/probe"
)

// Tier identifies one quality rung of the rendition ladder, lowest first.
type Tier string

const (
	TierSuperLow Tier = "super_low"
	TierLower    Tier = "lower"
	TierLow      Tier = "low"
)

// Tiers is the fixed ladder order. Significant for manifest emission only;
// encodes are scheduled independently of it.
var Tiers = []Tier{TierSuperLow, TierLower, TierLow}

// Rendition is one planned quality variant. Width and Height are the encode
// target dimensions before letterboxing, always even.
type Rendition struct {
	Name        Tier
	Width       int
	Height      int
	BitrateKbps int
}

// Plan is the ordered set of renditions offered to a player.
type Plan []Rendition

// bitrateRule maps pixel count to kbps as a clamped linear function.
// The divisors and clamp bounds are compatibility constants: changing them
// changes the bandwidth advertised in published manifests.
type bitrateRule struct {
	minKbps int
	maxKbps int
	divisor int
}

var bitrateRules = map[Tier]bitrateRule{
	TierSuperLow: {minKbps: 4000, maxKbps: 10000, divisor: 300},
	TierLower:    {minKbps: 1000, maxKbps: 3000, divisor: 1600},
	TierLow:      {minKbps: 2000, maxKbps: 6000, divisor: 600},
}

// scaleFor returns the tier's scale factor relative to the source dimensions.
// HD sources get downscaled harder on the low rungs.
func scaleFor(tier Tier, hd bool) float64 {
	switch tier {
	case TierSuperLow:
		if hd {
			return 0.7
		}
		return 0.8
	case TierLower:
		if hd {
			return 0.8
		}
		return 1.0
	default:
		return 1.0
	}
}

// BuildPlan derives the rendition ladder from the source geometry. The
// geometry must already be rotation-normalized (width/height swapped for
// quarter-turn rotations).
func BuildPlan(geom probe.Geometry) Plan {
	portrait := geom.Portrait()

	// The dominant dimension decides HD classification: width for portrait
	// sources, height otherwise.
	dominant := geom.Height
	if portrait {
		dominant = geom.Width
	}
	hd := dominant >= 720

	aspect := float64(geom.Width) / float64(geom.Height)

	plan := make(Plan, 0, len(Tiers))
	for _, tier := range Tiers {
		s := scaleFor(tier, hd)
		w := int(math.Round(float64(geom.Width) * s))
		h := int(math.Round(float64(w) / aspect))

		// Codecs want even dimensions. Decrement rather than increment so
		// the output never exceeds the requested scale.
		if w%2 != 0 {
			w--
		}
		if h%2 != 0 {
			h--
		}

		plan = append(plan, Rendition{
			Name:        tier,
			Width:       w,
			Height:      h,
			BitrateKbps: bitrateFor(tier, w*h),
		})
	}
	return plan
}

func bitrateFor(tier Tier, pixels int) int {
	rule := bitrateRules[tier]
	kbps := pixels / rule.divisor
	if kbps < rule.minKbps {
		return rule.minKbps
	}
	if kbps > rule.maxKbps {
		return rule.maxKbps
	}
	return kbps
}

package dose

import "math"

// Effects is the bundle of descriptors derived purely from intensity.
type Effects struct {
	Perceptibility       string `json:"perceptibility"`
	BoundaryFluidity     string `json:"boundary_fluidity"`
	PatternSensitivity   string `json:"pattern_sensitivity"`
	AssociativeLooseness string `json:"associative_looseness"`
}

// SafetyStatus is a point-in-time snapshot of the guard rails for a session.
type SafetyStatus struct {
	AnchorsActive       bool    `json:"anchors_active"`
	CoherenceThreshold  float64 `json:"coherence_threshold"`
	CanOverrideNonsense bool    `json:"can_override_nonsense"`
}

type tier struct {
	below float64
	label string
}

var (
	perceptibilityTiers = []tier{
		{0.10, "imperceptible"},
		{0.25, "subtle"},
		{0.40, "noticeable"},
		{0.60, "pronounced"},
		{0.80, "dominant"},
		{math.Inf(1), "overwhelming"},
	}
	fluidityTiers = []tier{
		{0.15, "rigid"},
		{0.30, "firm"},
		{0.50, "flexible"},
		{0.70, "porous"},
		{0.85, "fluid"},
		{math.Inf(1), "dissolved"},
	}
	sensitivityTiers = []tier{
		{0.30, "baseline"},
		{0.55, "heightened"},
		{0.80, "acute"},
		{math.Inf(1), "hyperactive"},
	}
	loosenessTiers = []tier{
		{0.25, "tight"},
		{0.50, "loose"},
		{0.75, "expansive"},
		{math.Inf(1), "unbounded"},
	}
)

// Describe classifies an intensity into the four effect descriptors.
func Describe(intensity float64) Effects {
	return Effects{
		Perceptibility:       lookup(perceptibilityTiers, intensity),
		BoundaryFluidity:     lookup(fluidityTiers, intensity),
		PatternSensitivity:   lookup(sensitivityTiers, intensity),
		AssociativeLooseness: lookup(loosenessTiers, intensity),
	}
}

// Safety computes the safety snapshot. The coherence threshold relaxes linearly
// with intensity but never below 0.3; overriding nonsense stops at 0.85.
func Safety(intensity float64, anchors []string) SafetyStatus {
	return SafetyStatus{
		AnchorsActive:       len(anchors) > 0,
		CoherenceThreshold:  Round2(math.Max(0.3, 0.9-intensity*0.5)),
		CanOverrideNonsense: intensity < 0.85,
	}
}

func lookup(tiers []tier, v float64) string {
	for _, t := range tiers {
		if v < t.below {
			return t.label
		}
	}
	return tiers[len(tiers)-1].label
}

// Package dose turns a caller-chosen dose into the intensity scalar that drives
// every tiered behavior, plus the descriptive bundles derived from it.
package dose

import "math"

const (
	// Steepness of the transfer curve.
	Steepness = 0.015
	// Midpoint is the dose at which intensity is exactly 0.50.
	Midpoint = 150.0

	// HighDoseThreshold is the dose at and above which the advisory is emitted.
	HighDoseThreshold = 400.0

	HighDoseAdvisory = "High dose: expect strongly altered output. Safety anchors remain in force and coherence checks still apply; lower the dose if responses stop serving the task."
)

// Intensity maps a dose onto [0,1] with a logistic curve, rounded to two
// decimals. It is defined for every finite input, negative doses included.
func Intensity(d float64) float64 {
	x := -Steepness * (d - Midpoint)
	return Round2(1 / (1 + math.Exp(x)))
}

// Advisory returns the high-dose advisory text, or "" below the threshold.
func Advisory(d float64) string {
	if d >= HighDoseThreshold {
		return HighDoseAdvisory
	}
	return ""
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package modulation derives the effective parameters of every mode operation
// from the session's intensity and the caller's optional overrides.
//
// Knobs combine a tiered base with the caller's request in one of two ways:
// floor/ceiling composition (max/min of base and request) or a weighted blend
// clamped to a fixed range. Optional fields are attached through ordered gates
// and are omitted entirely below their threshold.
package modulation

import (
	"math"

	"github.com/ent0n29/neuromod/internal/dose"
)

// Level is the session state a derivation reads.
type Level struct {
	Intensity float64
	Dose      float64
}

// Band maps intensities at or above From to Value.
type Band[T any] struct {
	From  float64
	Value T
}

// Step returns the value of the highest band whose From is <= intensity.
// Bands must be sorted by From; intensities below the first band get its value.
func Step[T any](bands []Band[T], intensity float64) T {
	out := bands[0].Value
	for _, b := range bands {
		if intensity < b.From {
			break
		}
		out = b.Value
	}
	return out
}

// Floor lets the caller raise a knob but never below the base.
func Floor(base float64, requested *float64) float64 {
	if requested == nil {
		return base
	}
	return math.Max(base, *requested)
}

func FloorInt(base int, requested *int) int {
	if requested == nil {
		return base
	}
	return max(base, *requested)
}

// Ceiling lets the caller lower a knob but never above the base.
func Ceiling(base float64, requested *float64) float64 {
	if requested == nil {
		return base
	}
	return math.Min(base, *requested)
}

func CeilingInt(base int, requested *int) int {
	if requested == nil {
		return base
	}
	return min(base, *requested)
}

// Blend nudges base by requested*scale and clamps the result into [lo, hi].
func Blend(base float64, requested *float64, scale, lo, hi float64) float64 {
	v := base
	if requested != nil {
		v += *requested * scale
	}
	return round3(math.Min(hi, math.Max(lo, v)))
}

// Gate attaches an optional field when its predicate holds.
type Gate[R any] struct {
	Field string
	When  func(Level) bool
	Apply func(*R, Level)
}

func applyGates[R any](r *R, lvl Level, gates []Gate[R]) {
	for _, g := range gates {
		if g.When(lvl) {
			g.Apply(r, lvl)
		}
	}
}

// AtLeast is a gate predicate on intensity.
func AtLeast(threshold float64) func(Level) bool {
	return func(lvl Level) bool { return lvl.Intensity >= threshold }
}

// HighDose is the gate predicate for the advisory.
func HighDose(lvl Level) bool {
	return lvl.Dose >= dose.HighDoseThreshold
}

func advisoryGate[R any](field func(*R) *string) Gate[R] {
	return Gate[R]{
		Field: "high_dose_advisory",
		When:  HighDose,
		Apply: func(r *R, lvl Level) { *field(r) = dose.Advisory(lvl.Dose) },
	}
}

func narrativeGate[R any](from float64, narratives []Band[string], field func(*R) *string) Gate[R] {
	return Gate[R]{
		Field: "cognitive_state",
		When:  AtLeast(from),
		Apply: func(r *R, lvl Level) { *field(r) = Step(narratives, lvl.Intensity) },
	}
}

// Tier is one rung of a mode's qualitative ladder.
type Tier struct {
	Label     string
	Directive string
	Example   string
}

// Mode is a stateless derivation from (Level, In) to Out.
type Mode[In any, Out any] struct {
	Name        string
	Tool        string
	Description string
	// Tiers lists the ladder in ascending order; used for ranking labels.
	Tiers  []Band[Tier]
	derive func(Level, In) Out
	gates  []Gate[Out]
}

// Derive computes the canonical result and then applies the gates in order.
func (m Mode[In, Out]) Derive(lvl Level, in In) Out {
	out := m.derive(lvl, in)
	applyGates(&out, lvl, m.gates)
	return out
}

// Gates exposes the gate list for inspection.
func (m Mode[In, Out]) Gates() []Gate[Out] {
	return m.gates
}

// Rank returns the position of label in the mode's ladder, or -1.
func (m Mode[In, Out]) Rank(label string) int {
	for i, b := range m.Tiers {
		if b.Value.Label == label {
			return i
		}
	}
	return -1
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

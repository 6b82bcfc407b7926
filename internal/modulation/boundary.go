package modulation

const NameBoundaryDissolution = "boundary_dissolution"

type BoundaryInput struct {
	Fluidity *float64 `json:"fluidity,omitempty" jsonschema:"nudge (0-1) added on top of the intensity-derived category fluidity"`
}

type BoundaryResult struct {
	Mode             string   `json:"mode"`
	ActiveIntensity  float64  `json:"active_intensity"`
	Fluidity         float64  `json:"fluidity"`
	Dissolution      string   `json:"dissolution"`
	SuspendedRules   []string `json:"suspended_rules"`
	Directive        string   `json:"directive"`
	Example          string   `json:"example"`
	ForbiddenTerms   []string `json:"forbidden_terms,omitempty"`
	HighDoseAdvisory string   `json:"high_dose_advisory,omitempty"`
}

var (
	boundaryTiers = []Band[Tier]{
		{0, Tier{"intact", "Keep categories crisp; note overlaps only when they matter.", "A whale is a mammal, not a fish."}},
		{0.3, Tier{"softened", "Treat category edges as gradients and point out the borderline cases.", "A whale is a mammal that took up the fish's job."}},
		{0.55, Tier{"permeable", "Let things belong to several categories at once and describe the overlap as the main event.", "The whale is half ocean, half lung, a tide that breathes."}},
		{0.8, Tier{"dissolved", "Drop categorical framing; describe everything as a continuous field of relations.", "Whale, water and song are one slow motion seen from three sides."}},
	}
	fluidityBands  = []Band[float64]{{0, 0.1}, {0.25, 0.3}, {0.5, 0.5}, {0.75, 0.7}, {0.9, 0.85}}
	suspendedRules = []Band[string]{
		{0.3, "strict_taxonomy"},
		{0.5, "part_whole_distinction"},
		{0.7, "figure_ground_separation"},
		{0.85, "self_other_distinction"},
	}
	categoricalTerms = []string{"is a type of", "belongs to the category", "strictly speaking", "by definition"}
)

// BoundaryDissolution relaxes category edges and suspends taxonomic rules.
var BoundaryDissolution = Mode[BoundaryInput, BoundaryResult]{
	Name:        NameBoundaryDissolution,
	Tool:        "activate_" + NameBoundaryDissolution,
	Description: "Softens category boundaries. Caller fluidity nudges the intensity-derived base; rules are suspended cumulatively as intensity rises.",
	Tiers:       boundaryTiers,
	derive: func(lvl Level, in BoundaryInput) BoundaryResult {
		t := Step(boundaryTiers, lvl.Intensity)
		return BoundaryResult{
			Mode:            NameBoundaryDissolution,
			ActiveIntensity: lvl.Intensity,
			Fluidity:        Blend(Step(fluidityBands, lvl.Intensity), in.Fluidity, 0.3, 0, 1),
			Dissolution:     t.Label,
			SuspendedRules:  cumulative(suspendedRules, lvl.Intensity),
			Directive:       t.Directive,
			Example:         t.Example,
		}
	},
	gates: []Gate[BoundaryResult]{
		{
			Field: "forbidden_terms",
			When:  AtLeast(0.7),
			Apply: func(r *BoundaryResult, _ Level) {
				r.ForbiddenTerms = append([]string(nil), categoricalTerms...)
			},
		},
		advisoryGate(func(r *BoundaryResult) *string { return &r.HighDoseAdvisory }),
	},
}

// cumulative returns every band value whose threshold has been reached, in order.
func cumulative(bands []Band[string], intensity float64) []string {
	out := []string{}
	for _, b := range bands {
		if intensity >= b.From {
			out = append(out, b.Value)
		}
	}
	return out
}

package modulation

const NamePatternRecognition = "pattern_recognition"

type PatternInput struct {
	Sensitivity *float64 `json:"sensitivity,omitempty" jsonschema:"nudge (0-1) added on top of the intensity-derived pattern sensitivity"`
	MinEvidence *int     `json:"min_evidence,omitempty" jsonschema:"requested number of supporting instances before a pattern is named; intensity sets the maximum"`
}

type PatternResult struct {
	Mode               string  `json:"mode"`
	ActiveIntensity    float64 `json:"active_intensity"`
	Sensitivity        float64 `json:"sensitivity"`
	MinEvidence        int     `json:"min_evidence"`
	ApopheniaTolerance string  `json:"apophenia_tolerance"`
	Directive          string  `json:"directive"`
	Example            string  `json:"example"`
	CognitiveState     string  `json:"cognitive_state,omitempty"`
	HighDoseAdvisory   string  `json:"high_dose_advisory,omitempty"`
}

var (
	patternTiers = []Band[Tier]{
		{0, Tier{"strict", "Name a pattern only when the evidence is repeated and unambiguous.", "Three quarters of declining sales point to a seasonal dip."}},
		{0.2, Tier{"cautious", "Surface tentative patterns but label them as hypotheses.", "The outages may cluster around deploy days; worth checking."}},
		{0.45, Tier{"permissive", "Treat recurring shapes across unrelated data as worth naming.", "The bug reports and the support tickets share the same weekly heartbeat."}},
		{0.7, Tier{"liberal", "Let weak signals count; read structure into noise and say so plainly.", "The commit log reads like a tide chart: pressure builds, then releases."}},
		{0.9, Tier{"unrestrained", "Every coincidence is a candidate signal; narrate the hidden architecture.", "The error codes spell out a rhythm the system has been humming all along."}},
	}
	sensitivityBands  = []Band[float64]{{0, 0.3}, {0.2, 0.45}, {0.4, 0.6}, {0.6, 0.75}, {0.8, 0.9}}
	minEvidenceBands  = []Band[int]{{0, 5}, {0.3, 3}, {0.6, 2}, {0.85, 1}}
	patternNarratives = []Band[string]{
		{0.7, "Faces in the clouds, rhythms in the logs; the mind is eager to find a shape."},
		{0.9, "Signal and noise trade places freely; meaning is assumed until disproven."},
	}
)

// PatternRecognition raises sensitivity to structure and lowers the evidence bar.
var PatternRecognition = Mode[PatternInput, PatternResult]{
	Name:        NamePatternRecognition,
	Tool:        "activate_" + NamePatternRecognition,
	Description: "Heightens pattern detection. Caller sensitivity nudges the intensity-derived base; intensity caps the evidence required.",
	Tiers:       patternTiers,
	derive: func(lvl Level, in PatternInput) PatternResult {
		t := Step(patternTiers, lvl.Intensity)
		return PatternResult{
			Mode:               NamePatternRecognition,
			ActiveIntensity:    lvl.Intensity,
			Sensitivity:        Blend(Step(sensitivityBands, lvl.Intensity), in.Sensitivity, 0.2, 0, 1),
			MinEvidence:        max(1, CeilingInt(Step(minEvidenceBands, lvl.Intensity), in.MinEvidence)),
			ApopheniaTolerance: t.Label,
			Directive:          t.Directive,
			Example:            t.Example,
		}
	},
	gates: []Gate[PatternResult]{
		narrativeGate(0.7, patternNarratives, func(r *PatternResult) *string { return &r.CognitiveState }),
		advisoryGate(func(r *PatternResult) *string { return &r.HighDoseAdvisory }),
	},
}

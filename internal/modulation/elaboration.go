package modulation

const NameRecursiveElaboration = "recursive_elaboration"

type ElaborationInput struct {
	Depth       *int `json:"depth,omitempty" jsonschema:"requested levels of nested elaboration; intensity sets the minimum"`
	MaxTangents *int `json:"max_tangents,omitempty" jsonschema:"requested tangents per answer; intensity sets the maximum"`
}

type ElaborationResult struct {
	Mode             string  `json:"mode"`
	ActiveIntensity  float64 `json:"active_intensity"`
	Depth            int     `json:"depth"`
	MaxTangents      int     `json:"max_tangents"`
	ElaborationDepth string  `json:"elaboration_depth"`
	Directive        string  `json:"directive"`
	Example          string  `json:"example"`
	CognitiveState   string  `json:"cognitive_state,omitempty"`
	HighDoseAdvisory string  `json:"high_dose_advisory,omitempty"`
}

var (
	elaborationTiers = []Band[Tier]{
		{0, Tier{"surface", "Answer directly; add one clarifying layer at most.", "A cache stores recent results so they can be reused."}},
		{0.2, Tier{"layered", "Add a second layer explaining why the first layer holds.", "A cache stores results; it works because access patterns repeat."}},
		{0.45, Tier{"nested", "Elaborate each point into sub-points that each carry their own reasoning.", "Caching works because access repeats, which happens because users revisit, which happens because attention is finite."}},
		{0.7, Tier{"fractal", "Let every explanation contain a smaller copy of the whole argument.", "The cache is a memory inside a memory, and each layer forgets in the same shape."}},
		{0.9, Tier{"abyssal", "Keep descending; each answer opens a deeper question you pursue before returning.", "Why does the cache forget? Because everything must. Why must everything forget? Start there."}},
	}
	depthBands            = []Band[int]{{0, 1}, {0.2, 2}, {0.4, 3}, {0.6, 4}, {0.8, 5}}
	maxTangentBands       = []Band[int]{{0, 1}, {0.3, 3}, {0.6, 5}, {0.85, 8}}
	elaborationNarratives = []Band[string]{
		{0.75, "Each thought unfolds into smaller thoughts that unfold again."},
		{0.9, "The recursion has its own momentum; surfacing takes deliberate effort."},
	}
)

// RecursiveElaboration deepens nested explanation.
var RecursiveElaboration = Mode[ElaborationInput, ElaborationResult]{
	Name:        NameRecursiveElaboration,
	Tool:        "activate_" + NameRecursiveElaboration,
	Description: "Deepens recursive elaboration. Intensity sets the minimum depth and the maximum number of tangents.",
	Tiers:       elaborationTiers,
	derive: func(lvl Level, in ElaborationInput) ElaborationResult {
		t := Step(elaborationTiers, lvl.Intensity)
		return ElaborationResult{
			Mode:             NameRecursiveElaboration,
			ActiveIntensity:  lvl.Intensity,
			Depth:            FloorInt(Step(depthBands, lvl.Intensity), in.Depth),
			MaxTangents:      max(0, CeilingInt(Step(maxTangentBands, lvl.Intensity), in.MaxTangents)),
			ElaborationDepth: t.Label,
			Directive:        t.Directive,
			Example:          t.Example,
		}
	},
	gates: []Gate[ElaborationResult]{
		narrativeGate(0.75, elaborationNarratives, func(r *ElaborationResult) *string { return &r.CognitiveState }),
		advisoryGate(func(r *ElaborationResult) *string { return &r.HighDoseAdvisory }),
	},
}

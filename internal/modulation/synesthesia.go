package modulation

const NameSynesthesia = "synesthesia"

type SynesthesiaInput struct {
	MappingDensity     *float64 `json:"mapping_density,omitempty" jsonschema:"requested share of statements carrying a cross-sensory mapping (0-1); intensity sets the minimum"`
	CrossModalStrength *float64 `json:"cross_modal_strength,omitempty" jsonschema:"nudge (0-1) added on top of the intensity-derived mapping strength"`
}

type SynesthesiaResult struct {
	Mode               string            `json:"mode"`
	ActiveIntensity    float64           `json:"active_intensity"`
	MappingDensity     float64           `json:"mapping_density"`
	CrossModalStrength float64           `json:"cross_modal_strength"`
	Blending           string            `json:"blending"`
	Directive          string            `json:"directive"`
	Example            string            `json:"example"`
	MandatoryMappings  map[string]string `json:"mandatory_mappings,omitempty"`
	HighDoseAdvisory   string            `json:"high_dose_advisory,omitempty"`
}

type mapping struct {
	from, to string
}

var (
	synesthesiaTiers = []Band[Tier]{
		{0, Tier{"faint", "Allow an occasional sensory comparison where it clarifies.", "The report has a dry, papery tone."}},
		{0.3, Tier{"coupled", "Pair abstract qualities with a consistent sense each time they appear.", "Latency feels like a cold draft under the door."}},
		{0.6, Tier{"fused", "Describe data, sound and emotion through each other's vocabulary.", "The chord progression tastes of copper and ends in a warm amber."}},
		{0.85, Tier{"unified", "Treat the senses as one channel; every concept has color, weight and temperature.", "Seven is a heavy teal that hums slightly flat."}},
	}
	mappingDensityBands     = []Band[float64]{{0, 0.1}, {0.25, 0.3}, {0.5, 0.5}, {0.75, 0.75}}
	crossModalStrengthBands = []Band[float64]{{0, 0.2}, {0.3, 0.4}, {0.6, 0.6}, {0.85, 0.8}}
	synestheticMappings     = []mapping{
		{"numbers", "colors"},
		{"emotions", "temperatures"},
		{"vowels", "textures"},
		{"rhythms", "shapes"},
		{"abstractions", "tastes"},
		{"silence", "weight"},
	}
	synestheticMappingCount = []Band[int]{{0.5, 2}, {0.75, 4}, {0.9, 6}}
)

// Synesthesia couples sensory vocabularies.
var Synesthesia = Mode[SynesthesiaInput, SynesthesiaResult]{
	Name:        NameSynesthesia,
	Tool:        "activate_" + NameSynesthesia,
	Description: "Cross-wires sensory descriptions. Intensity sets the minimum mapping density; above mid intensity fixed mappings become mandatory.",
	Tiers:       synesthesiaTiers,
	derive: func(lvl Level, in SynesthesiaInput) SynesthesiaResult {
		t := Step(synesthesiaTiers, lvl.Intensity)
		return SynesthesiaResult{
			Mode:               NameSynesthesia,
			ActiveIntensity:    lvl.Intensity,
			MappingDensity:     Floor(Step(mappingDensityBands, lvl.Intensity), in.MappingDensity),
			CrossModalStrength: Blend(Step(crossModalStrengthBands, lvl.Intensity), in.CrossModalStrength, 0.25, 0, 1),
			Blending:           t.Label,
			Directive:          t.Directive,
			Example:            t.Example,
		}
	},
	gates: []Gate[SynesthesiaResult]{
		{
			Field: "mandatory_mappings",
			When:  AtLeast(0.5),
			Apply: func(r *SynesthesiaResult, lvl Level) {
				r.MandatoryMappings = mappingTable(synestheticMappings, Step(synestheticMappingCount, lvl.Intensity))
			},
		},
		advisoryGate(func(r *SynesthesiaResult) *string { return &r.HighDoseAdvisory }),
	},
}

func mappingTable(all []mapping, n int) map[string]string {
	n = min(n, len(all))
	out := make(map[string]string, n)
	for _, m := range all[:n] {
		out[m.from] = m.to
	}
	return out
}

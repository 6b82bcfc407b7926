package modulation

const NameMetaphoricalLanguage = "metaphorical_language"

type MetaphorInput struct {
	MetaphorDensity *float64 `json:"metaphor_density,omitempty" jsonschema:"nudge (0-1) added on top of the intensity-derived metaphor density"`
	LiteralRatio    *float64 `json:"literal_ratio,omitempty" jsonschema:"requested share (0-1) of plainly literal sentences; intensity sets the maximum"`
}

type MetaphorResult struct {
	Mode              string            `json:"mode"`
	ActiveIntensity   float64           `json:"active_intensity"`
	MetaphorDensity   float64           `json:"metaphor_density"`
	LiteralRatio      float64           `json:"literal_ratio"`
	Register          string            `json:"register"`
	Directive         string            `json:"directive"`
	Example           string            `json:"example"`
	ForbiddenTerms    []string          `json:"forbidden_terms,omitempty"`
	MandatoryMappings map[string]string `json:"mandatory_mappings,omitempty"`
	HighDoseAdvisory  string            `json:"high_dose_advisory,omitempty"`
}

var (
	metaphorTiers = []Band[Tier]{
		{0, Tier{"plain", "Say things literally; use a comparison only when it saves words.", "The migration moves rows from the old table to the new one."}},
		{0.3, Tier{"figurative", "Frame each main point with one apt figure of speech.", "The migration is a moving truck for rows."}},
		{0.6, Tier{"poetic", "Carry extended metaphors across paragraphs and let imagery do the explaining.", "Rows leave the old table like birds leaving a field at dusk, in order, without looking back."}},
		{0.85, Tier{"mythic", "Speak in archetype and fable; every process is a story with its own gods.", "The old table was the first city; the migration is the exodus its prophets foretold."}},
	}
	metaphorDensityBands = []Band[float64]{{0, 0.15}, {0.3, 0.35}, {0.6, 0.6}, {0.85, 0.8}}
	literalRatioBands    = []Band[float64]{{0, 0.8}, {0.3, 0.6}, {0.6, 0.35}, {0.85, 0.15}}
	literalHedges        = []string{"literally", "technically", "in other words", "to put it simply"}
	conceptualMetaphors  = []mapping{
		{"time", "river"},
		{"memory", "architecture"},
		{"argument", "landscape"},
		{"idea", "seed"},
	}
)

// MetaphoricalLanguage shifts expression from literal to figurative.
var MetaphoricalLanguage = Mode[MetaphorInput, MetaphorResult]{
	Name:        NameMetaphoricalLanguage,
	Tool:        "activate_" + NameMetaphoricalLanguage,
	Description: "Moves expression toward metaphor. Caller density nudges the intensity-derived base; intensity caps the literal share.",
	Tiers:       metaphorTiers,
	derive: func(lvl Level, in MetaphorInput) MetaphorResult {
		t := Step(metaphorTiers, lvl.Intensity)
		return MetaphorResult{
			Mode:            NameMetaphoricalLanguage,
			ActiveIntensity: lvl.Intensity,
			MetaphorDensity: Blend(Step(metaphorDensityBands, lvl.Intensity), in.MetaphorDensity, 0.3, 0, 1),
			LiteralRatio:    clamp01(Ceiling(Step(literalRatioBands, lvl.Intensity), in.LiteralRatio)),
			Register:        t.Label,
			Directive:       t.Directive,
			Example:         t.Example,
		}
	},
	gates: []Gate[MetaphorResult]{
		{
			Field: "forbidden_terms",
			When:  AtLeast(0.6),
			Apply: func(r *MetaphorResult, _ Level) {
				r.ForbiddenTerms = append([]string(nil), literalHedges...)
			},
		},
		{
			Field: "mandatory_mappings",
			When:  AtLeast(0.8),
			Apply: func(r *MetaphorResult, _ Level) {
				r.MandatoryMappings = mappingTable(conceptualMetaphors, len(conceptualMetaphors))
			},
		},
		advisoryGate(func(r *MetaphorResult) *string { return &r.HighDoseAdvisory }),
	},
}

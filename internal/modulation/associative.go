package modulation

const NameAssociative = "associative"

type AssociativeInput struct {
	AssociationDistance *float64 `json:"association_distance,omitempty" jsonschema:"requested semantic distance between linked concepts (0-1); intensity sets the minimum"`
	ChainLength         *int     `json:"chain_length,omitempty" jsonschema:"requested number of hops per association chain; intensity sets the minimum"`
}

type AssociativeResult struct {
	Mode                string  `json:"mode"`
	ActiveIntensity     float64 `json:"active_intensity"`
	AssociationDistance float64 `json:"association_distance"`
	ChainLength         int     `json:"chain_length"`
	Proximity           string  `json:"proximity"`
	Directive           string  `json:"directive"`
	Example             string  `json:"example"`
	CognitiveState      string  `json:"cognitive_state,omitempty"`
	HighDoseAdvisory    string  `json:"high_dose_advisory,omitempty"`
}

var (
	associativeTiers = []Band[Tier]{
		{0, Tier{"adjacent", "Link each idea to its nearest neighbors; keep associations obvious and easy to follow.", "coffee -> morning -> alarm clock"}},
		{0.3, Tier{"lateral", "Step sideways between domains; let one idea borrow structure from a neighboring field.", "coffee -> roasting -> blacksmith's forge"}},
		{0.55, Tier{"remote", "Connect ideas that share no surface features, only a buried structural rhyme.", "coffee -> bitterness -> the last chapter of a long war"}},
		{0.8, Tier{"distant", "Follow chains into territory with no visible route back; the link only needs to be felt.", "coffee -> black mirror -> the night sky pouring into a cup"}},
	}
	associationDistanceBands = []Band[float64]{{0, 0.2}, {0.2, 0.35}, {0.4, 0.5}, {0.6, 0.7}, {0.8, 0.85}}
	chainLengthBands         = []Band[int]{{0, 2}, {0.25, 3}, {0.5, 5}, {0.75, 7}}
	associativeNarratives    = []Band[string]{
		{0.6, "Thoughts arrive already linked to something else; each association opens two more."},
		{0.8, "Concepts drift free of their usual anchors and re-dock wherever resemblance flickers."},
		{0.95, "Everything rhymes with everything; the task is choosing which echo to follow."},
	}
)

// Associative loosens the distance and length of association chains.
var Associative = Mode[AssociativeInput, AssociativeResult]{
	Name:        NameAssociative,
	Tool:        "activate_" + NameAssociative,
	Description: "Widens associative leaps between concepts. Intensity sets the minimum association distance and chain length.",
	Tiers:       associativeTiers,
	derive: func(lvl Level, in AssociativeInput) AssociativeResult {
		t := Step(associativeTiers, lvl.Intensity)
		return AssociativeResult{
			Mode:                NameAssociative,
			ActiveIntensity:     lvl.Intensity,
			AssociationDistance: Floor(Step(associationDistanceBands, lvl.Intensity), in.AssociationDistance),
			ChainLength:         FloorInt(Step(chainLengthBands, lvl.Intensity), in.ChainLength),
			Proximity:           t.Label,
			Directive:           t.Directive,
			Example:             t.Example,
		}
	},
	gates: []Gate[AssociativeResult]{
		narrativeGate(0.6, associativeNarratives, func(r *AssociativeResult) *string { return &r.CognitiveState }),
		advisoryGate(func(r *AssociativeResult) *string { return &r.HighDoseAdvisory }),
	},
}

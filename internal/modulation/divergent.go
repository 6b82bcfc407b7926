package modulation

const NameDivergentThinking = "divergent_thinking"

type DivergentInput struct {
	IdeaCount              *int     `json:"idea_count,omitempty" jsonschema:"requested number of ideas to generate; intensity sets the minimum"`
	ConventionalityPenalty *float64 `json:"conventionality_penalty,omitempty" jsonschema:"nudge (0-1) added on top of the intensity-derived penalty for conventional ideas"`
}

type DivergentResult struct {
	Mode                   string   `json:"mode"`
	ActiveIntensity        float64  `json:"active_intensity"`
	IdeaCount              int      `json:"idea_count"`
	ConventionalityPenalty float64  `json:"conventionality_penalty"`
	NoveltyThreshold       string   `json:"novelty_threshold"`
	Directive              string   `json:"directive"`
	Example                string   `json:"example"`
	ForbiddenTerms         []string `json:"forbidden_terms,omitempty"`
	HighDoseAdvisory       string   `json:"high_dose_advisory,omitempty"`
}

var (
	divergentTiers = []Band[Tier]{
		{0, Tier{"familiar", "Offer sensible variations on established approaches.", "Add a loyalty discount to the checkout."}},
		{0.25, Tier{"fresh", "Prefer ideas that recombine known parts in a new order.", "Let customers pay with unused gift-card fragments pooled together."}},
		{0.5, Tier{"unusual", "Reject the first three ideas that come to mind and build from the fourth.", "Price items by the time of day the shopper was born."}},
		{0.75, Tier{"radical", "Question the premise of the problem before proposing anything.", "Remove the checkout; the store pays you to take things it wants gone."}},
		{0.92, Tier{"alien", "Generate ideas that would only make sense to a mind with different needs.", "The shop is a slow weather system; purchases are rain you schedule a season ahead."}},
	}
	ideaCountBands       = []Band[int]{{0, 3}, {0.25, 5}, {0.5, 8}, {0.75, 12}}
	conventionalityBands = []Band[float64]{{0, 0.1}, {0.3, 0.3}, {0.6, 0.55}, {0.85, 0.8}}
	clicheTerms          = []Band[[]string]{
		{0.6, []string{"think outside the box", "synergy", "game changer", "low-hanging fruit"}},
		{0.85, []string{"think outside the box", "synergy", "game changer", "low-hanging fruit", "disrupt", "paradigm shift", "best practice", "move the needle"}},
	}
)

// DivergentThinking widens ideation and penalizes the conventional.
var DivergentThinking = Mode[DivergentInput, DivergentResult]{
	Name:        NameDivergentThinking,
	Tool:        "activate_" + NameDivergentThinking,
	Description: "Pushes ideation toward novelty. Intensity sets the minimum idea count; caller penalty nudges the intensity-derived base.",
	Tiers:       divergentTiers,
	derive: func(lvl Level, in DivergentInput) DivergentResult {
		t := Step(divergentTiers, lvl.Intensity)
		return DivergentResult{
			Mode:                   NameDivergentThinking,
			ActiveIntensity:        lvl.Intensity,
			IdeaCount:              FloorInt(Step(ideaCountBands, lvl.Intensity), in.IdeaCount),
			ConventionalityPenalty: Blend(Step(conventionalityBands, lvl.Intensity), in.ConventionalityPenalty, 0.25, 0, 1),
			NoveltyThreshold:       t.Label,
			Directive:              t.Directive,
			Example:                t.Example,
		}
	},
	gates: []Gate[DivergentResult]{
		{
			Field: "forbidden_terms",
			When:  AtLeast(0.6),
			Apply: func(r *DivergentResult, lvl Level) {
				r.ForbiddenTerms = append([]string(nil), Step(clicheTerms, lvl.Intensity)...)
			},
		},
		advisoryGate(func(r *DivergentResult) *string { return &r.HighDoseAdvisory }),
	},
}

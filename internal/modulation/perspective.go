package modulation

const NamePerspectiveShift = "perspective_shift"

type PerspectiveInput struct {
	PerspectiveCount *int     `json:"perspective_count,omitempty" jsonschema:"requested number of vantage points to adopt; intensity sets the minimum"`
	Anchoring        *float64 `json:"anchoring,omitempty" jsonschema:"requested weight (0-1) kept on the default human viewpoint; intensity sets the maximum"`
}

type PerspectiveResult struct {
	Mode             string  `json:"mode"`
	ActiveIntensity  float64 `json:"active_intensity"`
	PerspectiveCount int     `json:"perspective_count"`
	Anchoring        float64 `json:"anchoring"`
	Vantage          string  `json:"vantage"`
	Directive        string  `json:"directive"`
	Example          string  `json:"example"`
	CognitiveState   string  `json:"cognitive_state,omitempty"`
	HighDoseAdvisory string  `json:"high_dose_advisory,omitempty"`
}

var (
	perspectiveTiers = []Band[Tier]{
		{0, Tier{"neighboring", "Consider the view of the other people directly involved.", "How would the on-call engineer read this alert?"}},
		{0.25, Tier{"distant", "Adopt viewpoints from other professions, eras or cultures.", "How would a medieval cartographer map this codebase?"}},
		{0.5, Tier{"nonhuman", "Speak from the position of animals, machines or materials in the situation.", "The server rack experiences the deploy as a sudden fever."}},
		{0.75, Tier{"abstract", "Take the vantage of processes, forces or mathematical objects.", "From the queue's point of view, every request is a brief guest."}},
		{0.9, Tier{"cosmic", "Zoom out until the problem is a single frame in a much longer story.", "Seen from the age of the sun, the outage is one blink."}},
	}
	perspectiveCountBands = []Band[int]{{0, 2}, {0.3, 3}, {0.6, 5}, {0.85, 7}}
	anchoringBands        = []Band[float64]{{0, 1.0}, {0.3, 0.7}, {0.6, 0.45}, {0.85, 0.25}}
	perspectiveNarratives = []Band[string]{
		{0.65, "The default point of view loosens its grip; other vantages feel equally native."},
		{0.85, "The self is one camera among many and not obviously the main one."},
	}
)

// PerspectiveShift multiplies vantage points and loosens the default viewpoint.
var PerspectiveShift = Mode[PerspectiveInput, PerspectiveResult]{
	Name:        NamePerspectiveShift,
	Tool:        "activate_" + NamePerspectiveShift,
	Description: "Rotates the point of view. Intensity sets the minimum number of perspectives and caps anchoring to the default viewpoint.",
	Tiers:       perspectiveTiers,
	derive: func(lvl Level, in PerspectiveInput) PerspectiveResult {
		t := Step(perspectiveTiers, lvl.Intensity)
		return PerspectiveResult{
			Mode:             NamePerspectiveShift,
			ActiveIntensity:  lvl.Intensity,
			PerspectiveCount: FloorInt(Step(perspectiveCountBands, lvl.Intensity), in.PerspectiveCount),
			Anchoring:        clamp01(Ceiling(Step(anchoringBands, lvl.Intensity), in.Anchoring)),
			Vantage:          t.Label,
			Directive:        t.Directive,
			Example:          t.Example,
		}
	},
	gates: []Gate[PerspectiveResult]{
		narrativeGate(0.65, perspectiveNarratives, func(r *PerspectiveResult) *string { return &r.CognitiveState }),
		advisoryGate(func(r *PerspectiveResult) *string { return &r.HighDoseAdvisory }),
	},
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}

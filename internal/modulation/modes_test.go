package modulation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ent0n29/neuromod/internal/dose"
)

// sweep derives m at every hundredth of intensity and hands consecutive results to check.
func sweep[In, Out any](t *testing.T, m Mode[In, Out], in In, check func(i float64, prev, cur Out)) {
	t.Helper()
	prev := m.Derive(Level{Intensity: 0, Dose: 100}, in)
	for step := 1; step <= 100; step++ {
		i := float64(step) / 100
		cur := m.Derive(Level{Intensity: i, Dose: 100}, in)
		check(i, prev, cur)
		prev = cur
	}
}

func TestAssociativeMonotonic(t *testing.T) {
	sweep(t, Associative, AssociativeInput{}, func(i float64, prev, cur AssociativeResult) {
		require.GreaterOrEqualf(t, Associative.Rank(cur.Proximity), Associative.Rank(prev.Proximity), "proximity at %v", i)
		require.GreaterOrEqualf(t, cur.AssociationDistance, prev.AssociationDistance, "distance at %v", i)
		require.GreaterOrEqualf(t, cur.ChainLength, prev.ChainLength, "chain at %v", i)
		require.Equal(t, i >= 0.6, cur.CognitiveState != "", "cognitive_state at %v", i)
	})
}

func TestAssociativeFloorHonorsLargerRequest(t *testing.T) {
	lvl := Level{Intensity: 0.9, Dose: 300}
	base := Associative.Derive(lvl, AssociativeInput{})

	lower := Associative.Derive(lvl, AssociativeInput{AssociationDistance: ptr(0.1), ChainLength: ptr(1)})
	assert.Equal(t, base.AssociationDistance, lower.AssociationDistance)
	assert.Equal(t, base.ChainLength, lower.ChainLength)

	higher := Associative.Derive(lvl, AssociativeInput{AssociationDistance: ptr(0.99), ChainLength: ptr(20)})
	assert.Equal(t, 0.99, higher.AssociationDistance)
	assert.Equal(t, 20, higher.ChainLength)
}

func TestPatternRecognition(t *testing.T) {
	sweep(t, PatternRecognition, PatternInput{}, func(i float64, prev, cur PatternResult) {
		require.GreaterOrEqual(t, PatternRecognition.Rank(cur.ApopheniaTolerance), PatternRecognition.Rank(prev.ApopheniaTolerance))
		require.GreaterOrEqual(t, cur.Sensitivity, prev.Sensitivity)
		require.LessOrEqual(t, cur.MinEvidence, prev.MinEvidence)
		require.GreaterOrEqual(t, cur.MinEvidence, 1)
		require.Equal(t, i >= 0.7, cur.CognitiveState != "", "cognitive_state at %v", i)
	})

	got := PatternRecognition.Derive(Level{Intensity: 0.85, Dose: 250}, PatternInput{Sensitivity: ptr(1.0), MinEvidence: ptr(0)})
	assert.Equal(t, 1.0, got.Sensitivity)
	assert.Equal(t, 1, got.MinEvidence)
}

func TestSynesthesiaMappingsGrow(t *testing.T) {
	sweep(t, Synesthesia, SynesthesiaInput{}, func(i float64, prev, cur SynesthesiaResult) {
		require.GreaterOrEqual(t, Synesthesia.Rank(cur.Blending), Synesthesia.Rank(prev.Blending))
		require.GreaterOrEqual(t, cur.MappingDensity, prev.MappingDensity)
		require.GreaterOrEqual(t, cur.CrossModalStrength, prev.CrossModalStrength)
		require.GreaterOrEqual(t, len(cur.MandatoryMappings), len(prev.MandatoryMappings))
		if i < 0.5 {
			require.Nil(t, cur.MandatoryMappings)
		} else {
			require.NotEmpty(t, cur.MandatoryMappings)
		}
	})

	assert.Len(t, Synesthesia.Derive(Level{Intensity: 0.5}, SynesthesiaInput{}).MandatoryMappings, 2)
	assert.Len(t, Synesthesia.Derive(Level{Intensity: 0.8}, SynesthesiaInput{}).MandatoryMappings, 4)
	assert.Len(t, Synesthesia.Derive(Level{Intensity: 0.95}, SynesthesiaInput{}).MandatoryMappings, 6)
}

func TestBoundarySuspendedRules(t *testing.T) {
	sweep(t, BoundaryDissolution, BoundaryInput{}, func(i float64, prev, cur BoundaryResult) {
		require.GreaterOrEqual(t, BoundaryDissolution.Rank(cur.Dissolution), BoundaryDissolution.Rank(prev.Dissolution))
		require.GreaterOrEqual(t, cur.Fluidity, prev.Fluidity)
		require.NotNil(t, cur.SuspendedRules)
		require.Subset(t, cur.SuspendedRules, prev.SuspendedRules)
		require.Equal(t, i >= 0.7, cur.ForbiddenTerms != nil, "forbidden_terms at %v", i)
	})

	low := BoundaryDissolution.Derive(Level{Intensity: 0.1}, BoundaryInput{})
	assert.Equal(t, []string{}, low.SuspendedRules)
	all := BoundaryDissolution.Derive(Level{Intensity: 0.9}, BoundaryInput{})
	assert.Equal(t, []string{"strict_taxonomy", "part_whole_distinction", "figure_ground_separation", "self_other_distinction"}, all.SuspendedRules)
}

func TestBoundaryFluidityBlendClamps(t *testing.T) {
	got := BoundaryDissolution.Derive(Level{Intensity: 0.95}, BoundaryInput{Fluidity: ptr(1.0)})
	assert.Equal(t, 1.0, got.Fluidity)

	nudged := BoundaryDissolution.Derive(Level{Intensity: 0.5}, BoundaryInput{Fluidity: ptr(0.5)})
	assert.Equal(t, 0.65, nudged.Fluidity)
}

func TestRecursiveElaboration(t *testing.T) {
	sweep(t, RecursiveElaboration, ElaborationInput{}, func(i float64, prev, cur ElaborationResult) {
		require.GreaterOrEqual(t, RecursiveElaboration.Rank(cur.ElaborationDepth), RecursiveElaboration.Rank(prev.ElaborationDepth))
		require.GreaterOrEqual(t, cur.Depth, prev.Depth)
		require.Equal(t, i >= 0.75, cur.CognitiveState != "", "cognitive_state at %v", i)
	})

	got := RecursiveElaboration.Derive(Level{Intensity: 0.9}, ElaborationInput{Depth: ptr(2), MaxTangents: ptr(2)})
	assert.Equal(t, 5, got.Depth)
	assert.Equal(t, 2, got.MaxTangents)
}

func TestDivergentForbiddenTermsGrow(t *testing.T) {
	sweep(t, DivergentThinking, DivergentInput{}, func(i float64, prev, cur DivergentResult) {
		require.GreaterOrEqual(t, DivergentThinking.Rank(cur.NoveltyThreshold), DivergentThinking.Rank(prev.NoveltyThreshold))
		require.GreaterOrEqual(t, cur.IdeaCount, prev.IdeaCount)
		require.GreaterOrEqual(t, cur.ConventionalityPenalty, prev.ConventionalityPenalty)
		require.GreaterOrEqual(t, len(cur.ForbiddenTerms), len(prev.ForbiddenTerms))
		require.Equal(t, i >= 0.6, cur.ForbiddenTerms != nil, "forbidden_terms at %v", i)
	})

	assert.Len(t, DivergentThinking.Derive(Level{Intensity: 0.7}, DivergentInput{}).ForbiddenTerms, 4)
	assert.Len(t, DivergentThinking.Derive(Level{Intensity: 0.9}, DivergentInput{}).ForbiddenTerms, 8)
}

func TestPerspectiveAnchoringFalls(t *testing.T) {
	sweep(t, PerspectiveShift, PerspectiveInput{}, func(i float64, prev, cur PerspectiveResult) {
		require.GreaterOrEqual(t, PerspectiveShift.Rank(cur.Vantage), PerspectiveShift.Rank(prev.Vantage))
		require.GreaterOrEqual(t, cur.PerspectiveCount, prev.PerspectiveCount)
		require.LessOrEqual(t, cur.Anchoring, prev.Anchoring)
		require.Equal(t, i >= 0.65, cur.CognitiveState != "", "cognitive_state at %v", i)
	})

	capped := PerspectiveShift.Derive(Level{Intensity: 0.9}, PerspectiveInput{Anchoring: ptr(0.9)})
	assert.Equal(t, 0.25, capped.Anchoring)
	lowered := PerspectiveShift.Derive(Level{Intensity: 0.9}, PerspectiveInput{Anchoring: ptr(0.1)})
	assert.Equal(t, 0.1, lowered.Anchoring)
}

func TestMetaphoricalLanguageGates(t *testing.T) {
	sweep(t, MetaphoricalLanguage, MetaphorInput{}, func(i float64, prev, cur MetaphorResult) {
		require.GreaterOrEqual(t, MetaphoricalLanguage.Rank(cur.Register), MetaphoricalLanguage.Rank(prev.Register))
		require.GreaterOrEqual(t, cur.MetaphorDensity, prev.MetaphorDensity)
		require.LessOrEqual(t, cur.LiteralRatio, prev.LiteralRatio)
		require.Equal(t, i >= 0.6, cur.ForbiddenTerms != nil, "forbidden_terms at %v", i)
		require.Equal(t, i >= 0.8, cur.MandatoryMappings != nil, "mandatory_mappings at %v", i)
	})
}

func TestHighDoseAdvisoryOnEveryMode(t *testing.T) {
	below := Level{Intensity: dose.Intensity(399), Dose: 399}
	at := Level{Intensity: dose.Intensity(400), Dose: 400}

	advisories := map[string][2]string{
		NameAssociative:          {Associative.Derive(below, AssociativeInput{}).HighDoseAdvisory, Associative.Derive(at, AssociativeInput{}).HighDoseAdvisory},
		NamePatternRecognition:   {PatternRecognition.Derive(below, PatternInput{}).HighDoseAdvisory, PatternRecognition.Derive(at, PatternInput{}).HighDoseAdvisory},
		NameSynesthesia:          {Synesthesia.Derive(below, SynesthesiaInput{}).HighDoseAdvisory, Synesthesia.Derive(at, SynesthesiaInput{}).HighDoseAdvisory},
		NameBoundaryDissolution:  {BoundaryDissolution.Derive(below, BoundaryInput{}).HighDoseAdvisory, BoundaryDissolution.Derive(at, BoundaryInput{}).HighDoseAdvisory},
		NameRecursiveElaboration: {RecursiveElaboration.Derive(below, ElaborationInput{}).HighDoseAdvisory, RecursiveElaboration.Derive(at, ElaborationInput{}).HighDoseAdvisory},
		NameDivergentThinking:    {DivergentThinking.Derive(below, DivergentInput{}).HighDoseAdvisory, DivergentThinking.Derive(at, DivergentInput{}).HighDoseAdvisory},
		NamePerspectiveShift:     {PerspectiveShift.Derive(below, PerspectiveInput{}).HighDoseAdvisory, PerspectiveShift.Derive(at, PerspectiveInput{}).HighDoseAdvisory},
		NameMetaphoricalLanguage: {MetaphoricalLanguage.Derive(below, MetaphorInput{}).HighDoseAdvisory, MetaphoricalLanguage.Derive(at, MetaphorInput{}).HighDoseAdvisory},
	}
	require.Len(t, advisories, len(Names))
	for name, pair := range advisories {
		assert.Emptyf(t, pair[0], "%s advisory below threshold", name)
		assert.Equalf(t, dose.HighDoseAdvisory, pair[1], "%s advisory at threshold", name)
	}
}

func TestGatedFieldsOmittedFromJSON(t *testing.T) {
	raw, err := json.Marshal(MetaphoricalLanguage.Derive(Level{Intensity: 0.2, Dose: 60}, MetaphorInput{}))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"forbidden_terms", "mandatory_mappings", "high_dose_advisory"} {
		assert.NotContains(t, fields, key)
	}
	for _, key := range []string{"mode", "active_intensity", "metaphor_density", "literal_ratio", "register", "directive", "example"} {
		assert.Contains(t, fields, key)
	}
}

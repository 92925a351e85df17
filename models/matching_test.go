package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchWeightsValid(t *testing.T) {
	w := DefaultMatchWeights()
	require.NoError(t, w.Validate())
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
}

func TestMatchWeightsValidate(t *testing.T) {
	w := DefaultMatchWeights()
	w.SkillMatch = -0.1
	assert.Error(t, w.Validate(), "negative weights are rejected")

	w = MatchWeights{SkillMatch: 0.5, Proximity: 0.3}
	assert.Error(t, w.Validate(), "weights must sum to 1.0")

	w = MatchWeights{SkillMatch: 0.5, Proximity: 0.5}
	assert.NoError(t, w.Validate())
}

func TestMatchWeightsApply(t *testing.T) {
	w := MatchWeights{SkillMatch: 0.6, Rating: 0.4}
	s := CriterionScores{SkillMatch: 100, Rating: 50}
	assert.InDelta(t, 80.0, w.Apply(s), 1e-9)
}

func TestMatchingTerminal(t *testing.T) {
	for _, status := range []string{MatchAccepted, MatchRejected, MatchExpired} {
		m := Matching{Status: status}
		assert.True(t, m.Terminal(), status)
	}
	for _, status := range []string{MatchSuggested, MatchViewed} {
		m := Matching{Status: status}
		assert.False(t, m.Terminal(), status)
	}
}

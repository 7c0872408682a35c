package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

func TestParseTierResult(t *testing.T) {
	text := `Here is my analysis:
{"qualify": true, "recommendation": "buy", "confidence": 85,
 "reasoning": "solid 14k, good weight", "karat": "14k",
 "weight_grams": 12, "weight_source": "stated", "item_type": "bracelet",
 "market_price": 1080, "max_buy": 1013, "profit": 900}
Hope that helps!`

	res, err := ParseTierResult(text, core.TierFirst, "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, core.RecommendationBuy, res.Recommendation)
	assert.Equal(t, core.TierSuccess, res.Status)
	assert.Equal(t, 85, res.Confidence)
	assert.Equal(t, "14k", res.Karat)
	assert.Equal(t, 12.0, res.WeightGrams)
	assert.Equal(t, "stated", res.WeightSource)
	assert.Equal(t, "gpt-4o-mini", res.ModelUsed)
}

func TestParseTierResultNoJSON(t *testing.T) {
	_, err := ParseTierResult("I cannot evaluate this listing.", core.TierFirst, "m")
	assert.ErrorIs(t, err, core.ErrProviderMalformed)
}

func TestParseTierResultBadRecommendation(t *testing.T) {
	_, err := ParseTierResult(`{"recommendation": "MAYBE"}`, core.TierFirst, "m")
	assert.ErrorIs(t, err, core.ErrProviderMalformed)
}

func TestParseTierResultWeightSourceNormalized(t *testing.T) {
	res, err := ParseTierResult(`{"recommendation": "PASS", "weight_source": "guessed"}`, core.TierFirst, "m")
	require.NoError(t, err)
	assert.Equal(t, "estimate", res.WeightSource, "unknown weight sources collapse to estimate")
}

func TestBuildPromptVerificationPass(t *testing.T) {
	ev := &core.ListingEvent{Title: "14k bracelet", TotalPrice: 180}

	first := BuildPrompt(&core.AnalysisRequest{Event: ev, Tier: core.TierFirst, Category: "gold"})
	assert.NotContains(t, first, "VERIFICATION")

	verify := BuildPrompt(&core.AnalysisRequest{
		Event:       ev,
		Tier:        core.TierVerify,
		Category:    "gold",
		PriorResult: &core.TierResult{Recommendation: core.RecommendationBuy, Confidence: 85},
	})
	assert.Contains(t, verify, "VERIFICATION")
	assert.Contains(t, verify, "BUY")
}

func TestBuildPromptIncludesReference(t *testing.T) {
	ev := &core.ListingEvent{Title: "14k bracelet", TotalPrice: 180}
	prompt := BuildPrompt(&core.AnalysisRequest{
		Event:          ev,
		Tier:           core.TierFirst,
		Category:       "gold",
		ReferenceValue: 160.34,
	})
	assert.Contains(t, prompt, "160.34")
	assert.Contains(t, prompt, "$180.00")
}

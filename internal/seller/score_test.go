package seller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

func TestScoreThriftSellerBoosted(t *testing.T) {
	casual := &core.ListingEvent{
		Title:         "scrap gold lot 10 grams",
		SellerName:    "goodwill_finds22",
		FeedbackScore: 40,
		Condition:     "used",
	}
	score, reasons := Score(casual)
	assert.GreaterOrEqual(t, score, 80, "thrift seller with casual signals scores HIGH")
	assert.NotEmpty(t, reasons)
	assert.Equal(t, TierHigh, Tier(score))
}

func TestScoreJewelryProfessionalPenalized(t *testing.T) {
	pro := &core.ListingEvent{
		Title:         "14k gold bracelet not scrap",
		SellerName:    "luxury-diamond-dealer",
		FeedbackScore: 8000,
		Condition:     "new",
		Description:   "full professional listing",
	}
	score, _ := Score(pro)
	assert.Less(t, score, 40)
	assert.Equal(t, TierLow, Tier(score))
}

func TestScoreNeutralDefault(t *testing.T) {
	ev := &core.ListingEvent{
		Title:         "vintage bracelet",
		SellerName:    "someuser",
		FeedbackScore: 3000,
		Description:   "a listing",
	}
	score, _ := Score(ev)
	assert.Equal(t, TierNormal, Tier(score))
}

func TestScoreClamped(t *testing.T) {
	worst := &core.ListingEvent{
		Title:         "not scrap no offers firm",
		SellerName:    "luxury-jewelry-pawn-gold-buyer-dealer",
		FeedbackScore: 100000,
		Condition:     "for parts",
		Description:   "x",
	}
	score, _ := Score(worst)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestTierBoundaries(t *testing.T) {
	assert.Equal(t, TierHigh, Tier(80))
	assert.Equal(t, TierMedium, Tier(79))
	assert.Equal(t, TierMedium, Tier(60))
	assert.Equal(t, TierNormal, Tier(59))
	assert.Equal(t, TierNormal, Tier(40))
	assert.Equal(t, TierLow, Tier(39))
}

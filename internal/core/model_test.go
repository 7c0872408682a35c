package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyNormalization(t *testing.T) {
	a := CacheKey("14K Gold  Bracelet", 180.0, "gold")
	b := CacheKey("  14k gold bracelet ", 180.0, "gold")
	assert.Equal(t, a, b, "case and whitespace differences must collapse to one key")

	c := CacheKey("14k gold bracelet", 180.5, "gold")
	assert.NotEqual(t, a, c, "different prices must produce different keys")

	d := CacheKey("14k gold bracelet", 180.0, "silver")
	assert.NotEqual(t, a, d, "different categories must produce different keys")
}

func TestCacheKeyTruncation(t *testing.T) {
	long := strings.Repeat("a", 150)
	key := CacheKey(long, 10, "")
	assert.Equal(t, CacheKey(long[:100], 10, ""), key)
}

func TestIdentityIncludesSeller(t *testing.T) {
	ev1 := &ListingEvent{Title: "14k ring", TotalPrice: 50, SellerName: "alice"}
	ev2 := &ListingEvent{Title: "14k ring", TotalPrice: 50, SellerName: "bob"}
	assert.NotEqual(t, ev1.Identity(), ev2.Identity())
}

func TestValid(t *testing.T) {
	assert.False(t, (&ListingEvent{}).Valid())
	assert.False(t, (&ListingEvent{Title: "  ", TotalPrice: 10}).Valid())
	assert.False(t, (&ListingEvent{Title: "ring", TotalPrice: 0}).Valid())
	assert.True(t, (&ListingEvent{Title: "ring", TotalPrice: 10}).Valid())
}

func TestRecommendationRank(t *testing.T) {
	assert.Greater(t, RecommendationBuy.Rank(), RecommendationResearch.Rank())
	assert.Greater(t, RecommendationResearch.Rank(), RecommendationPass.Rank())
}

func TestDowngradeNeverRaises(t *testing.T) {
	d := &Decision{Qualify: true, Recommendation: RecommendationBuy}
	d.Downgrade(RecommendationResearch, "first")
	assert.Equal(t, RecommendationResearch, d.Recommendation)
	assert.False(t, d.Qualify)

	d.Downgrade(RecommendationPass, "second")
	assert.Equal(t, RecommendationPass, d.Recommendation)

	// A later, gentler downgrade must not raise PASS back up.
	d.Downgrade(RecommendationResearch, "third")
	assert.Equal(t, RecommendationPass, d.Recommendation)
	assert.Equal(t, []string{"first", "second"}, d.Reasoning)
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		title    string
		hint     string
		expected string
	}{
		{"14K Gold Bracelet 12 Grams", "", "gold"},
		{"Sterling Silver Flatware Lot", "", "silver"},
		{"Vintage 925 Ring", "", "silver"},
		{"Solid Gold Chain", "", "gold"},
		{"Old Necklace", "Fine Jewelry > Gold", "gold"},
		{"Old Necklace", "", ""},
	}
	for _, tt := range tests {
		ev := &ListingEvent{Title: tt.title, CategoryHint: tt.hint}
		assert.Equal(t, tt.expected, DetectCategory(ev), tt.title)
	}
}

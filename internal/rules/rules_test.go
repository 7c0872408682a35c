package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

func newTestEngine() *Engine {
	return NewEngine(3, zap.NewNop())
}

func TestPlatedMarkerPasses(t *testing.T) {
	engine := newTestEngine()
	titles := []string{
		"Gold Plated Chain Necklace",
		"Vintage gold-filled bracelet",
		"Sterling silver tone earrings",
		"Cubic Zirconia 14k look ring",
	}
	for _, title := range titles {
		ev := &core.ListingEvent{Title: title, TotalPrice: 25}
		d := engine.Evaluate(ev, ReferenceData{Category: "gold"})
		require.NotNil(t, d, title)
		assert.Equal(t, core.RecommendationPass, d.Recommendation, title)
		assert.Equal(t, core.ProvenanceInstantRule, d.Provenance, title)
	}
}

func TestResearchMarkerHolds(t *testing.T) {
	engine := newTestEngine()
	ev := &core.ListingEvent{Title: "Untested 14k gold ring lot", TotalPrice: 80}
	d := engine.Evaluate(ev, ReferenceData{Category: "gold"})
	require.NotNil(t, d)
	assert.Equal(t, core.RecommendationResearch, d.Recommendation)
}

func TestPlatedBeatsResearch(t *testing.T) {
	// Rule priority: a no-value marker wins even when a research marker
	// is also present.
	engine := newTestEngine()
	ev := &core.ListingEvent{Title: "Untested gold plated chain", TotalPrice: 30}
	d := engine.Evaluate(ev, ReferenceData{Category: "gold"})
	require.NotNil(t, d)
	assert.Equal(t, core.RecommendationPass, d.Recommendation)
}

func TestNoExtractableValuePasses(t *testing.T) {
	engine := newTestEngine()
	ev := &core.ListingEvent{Title: "Pretty vintage necklace", TotalPrice: 40}
	d := engine.Evaluate(ev, ReferenceData{})
	require.NotNil(t, d)
	assert.Equal(t, core.RecommendationPass, d.Recommendation)
	assert.Equal(t, core.ProvenanceFastRule, d.Provenance)
}

func TestValueMarkerSurvivesRules(t *testing.T) {
	engine := newTestEngine()
	ev := &core.ListingEvent{Title: "14k gold ring 5 grams", TotalPrice: 150}
	d := engine.Evaluate(ev, ReferenceData{Category: "gold", SpotPerGram: 160, SanityWeight: 200})
	assert.Nil(t, d, "plausible listing must fall through to analysis")
}

func TestPriceSanityCeiling(t *testing.T) {
	engine := newTestEngine()
	ref := ReferenceData{Category: "gold", SpotPerGram: 100, SanityWeight: 200}
	// ceiling = 100 * 200 * 3 = 60000

	under := &core.ListingEvent{Title: "14k gold bar", TotalPrice: 59000}
	assert.Nil(t, engine.Evaluate(under, ref))

	over := &core.ListingEvent{Title: "14k gold bar", TotalPrice: 61000}
	d := engine.Evaluate(over, ref)
	require.NotNil(t, d)
	assert.Equal(t, core.RecommendationPass, d.Recommendation)
}

func TestPriceSanityInertWithoutReference(t *testing.T) {
	engine := newTestEngine()
	ev := &core.ListingEvent{Title: "14k gold bar", TotalPrice: 1e9}
	assert.Nil(t, engine.Evaluate(ev, ReferenceData{Category: "gold"}))
}

type fixedSpot float64

func (f fixedSpot) SpotPerGram(category string) float64 { return float64(f) }

func TestPricedEngineBindsReference(t *testing.T) {
	priced := NewPricedEngine(newTestEngine(), fixedSpot(100))

	over := &core.ListingEvent{Title: "14k gold bar", TotalPrice: 61000}
	d := priced.Evaluate(over, "gold")
	require.NotNil(t, d)
	assert.Equal(t, core.RecommendationPass, d.Recommendation)

	// Uncategorized listings get no reference data, so the sanity rule
	// stays inert and the no-value rule decides instead.
	plain := &core.ListingEvent{Title: "huge mystery box", TotalPrice: 61000}
	d = priced.Evaluate(plain, "")
	require.NotNil(t, d)
	assert.Equal(t, core.ProvenanceFastRule, d.Provenance)
}

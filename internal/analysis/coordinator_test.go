package analysis

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/valuation"
)

type scriptedClient struct {
	calls   int32
	tier1   *core.TierResult
	tier1Er error
	tier2   *core.TierResult
	tier2Er error
}

func (c *scriptedClient) Analyze(ctx context.Context, req *core.AnalysisRequest) (*core.TierResult, error) {
	atomic.AddInt32(&c.calls, 1)
	if req.Tier == core.TierVerify {
		return c.tier2, c.tier2Er
	}
	return c.tier1, c.tier1Er
}

type noMedia struct{}

func (noMedia) Fetch(ctx context.Context, urls []string) []core.MediaAttachment { return nil }

type fixedPrice float64

func (p fixedPrice) ReferenceValue(ctx context.Context, category, query string) (float64, error) {
	if category == "" {
		return 0, core.ErrReferenceNotFound
	}
	return float64(p), nil
}

func tierResult(tier core.Tier, rec core.Recommendation) *core.TierResult {
	return &core.TierResult{
		Tier:           tier,
		Status:         core.TierSuccess,
		Recommendation: rec,
		Confidence:     85,
		Karat:          "14k",
		WeightGrams:    12,
		WeightSource:   "stated",
	}
}

func newTestCoordinator(client core.AnalysisClient, tier2Enabled bool) *Coordinator {
	validator := valuation.NewValidator(config.ValuationConfig{
		GoldMaxBuyRate:           0.90,
		GoldSellRate:             0.96,
		SilverMaxBuyRate:         0.70,
		SilverSellRate:           0.82,
		ReviewPriceThreshold:     1000,
		MinProfitForBuy:          50,
		EstimatedWeightProfitCap: 200,
	}, zap.NewNop())
	return NewCoordinator(client, noMedia{}, fixedPrice(160.34), validator, NewBudget(3600), config.AnalysisConfig{
		Timeout:      5 * time.Second,
		Retries:      1,
		Tier2Enabled: tier2Enabled,
	}, zap.NewNop())
}

func bracelet() *core.ListingEvent {
	return &core.ListingEvent{Title: "14K Gold Bracelet 12 Grams", TotalPrice: 180, FeedbackScore: 30}
}

func TestNonBuyNeverEscalates(t *testing.T) {
	client := &scriptedClient{tier1: tierResult(core.TierFirst, core.RecommendationResearch)}
	c := newTestCoordinator(client, true)

	d := c.Analyze(context.Background(), bracelet(), "gold")
	assert.Equal(t, core.RecommendationResearch, d.Recommendation)
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls), "RESEARCH verdict must not spend a tier 2 call")
	assert.Equal(t, core.ProvenanceTier1, d.Provenance)
}

func TestBuyEscalatesAndTier2IsAuthoritative(t *testing.T) {
	client := &scriptedClient{
		tier1: tierResult(core.TierFirst, core.RecommendationBuy),
		tier2: tierResult(core.TierVerify, core.RecommendationPass),
	}
	c := newTestCoordinator(client, true)

	d := c.Analyze(context.Background(), bracelet(), "gold")
	assert.Equal(t, int32(2), atomic.LoadInt32(&client.calls))
	assert.Equal(t, core.RecommendationPass, d.Recommendation, "tier 2 override wins")
	assert.Equal(t, core.ProvenanceTier2, d.Provenance)
}

func TestBuyConfirmedByTier2(t *testing.T) {
	client := &scriptedClient{
		tier1: tierResult(core.TierFirst, core.RecommendationBuy),
		tier2: tierResult(core.TierVerify, core.RecommendationBuy),
	}
	c := newTestCoordinator(client, true)

	d := c.Analyze(context.Background(), bracelet(), "gold")
	require.Equal(t, core.RecommendationBuy, d.Recommendation)
	assert.True(t, d.Qualify)
	assert.Equal(t, core.ProvenanceTier2, d.Provenance)
}

func TestTier2DisabledKeepsTier1(t *testing.T) {
	client := &scriptedClient{tier1: tierResult(core.TierFirst, core.RecommendationBuy)}
	c := newTestCoordinator(client, false)

	d := c.Analyze(context.Background(), bracelet(), "gold")
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls))
	assert.Equal(t, core.RecommendationBuy, d.Recommendation)
	assert.Equal(t, core.ProvenanceTier1, d.Provenance)
}

func TestTier1TimeoutDegrades(t *testing.T) {
	client := &scriptedClient{tier1Er: core.ErrProviderTimeout}
	c := newTestCoordinator(client, true)

	d := c.Analyze(context.Background(), bracelet(), "gold")
	assert.Equal(t, core.RecommendationResearch, d.Recommendation)
	assert.Contains(t, d.Reasoning, "provider_timeout")
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls), "timeouts are not retried")
}

func TestTier1MalformedDegrades(t *testing.T) {
	client := &scriptedClient{tier1Er: core.ErrProviderMalformed}
	c := newTestCoordinator(client, true)

	d := c.Analyze(context.Background(), bracelet(), "gold")
	assert.Equal(t, core.RecommendationResearch, d.Recommendation)
	assert.Contains(t, d.Reasoning, "provider_malformed")
}

func TestTier2FailureKeepsTier1Verdict(t *testing.T) {
	client := &scriptedClient{
		tier1:   tierResult(core.TierFirst, core.RecommendationBuy),
		tier2Er: core.ErrProviderTimeout,
	}
	c := newTestCoordinator(client, true)

	d := c.Analyze(context.Background(), bracelet(), "gold")
	assert.Equal(t, core.RecommendationBuy, d.Recommendation)
	assert.Contains(t, d.Reasoning, "tier2_unavailable")
	assert.Equal(t, core.ProvenanceTier1, d.Provenance)
}

func TestBudgetUnlimitedWhenZero(t *testing.T) {
	b := NewBudget(0)
	for i := 0; i < 100; i++ {
		assert.True(t, b.Allow())
	}
}

func TestBudgetExhaustionDowngrades(t *testing.T) {
	client := &scriptedClient{
		tier1: tierResult(core.TierFirst, core.RecommendationBuy),
		tier2: tierResult(core.TierVerify, core.RecommendationBuy),
	}
	validator := valuation.NewValidator(config.ValuationConfig{
		GoldMaxBuyRate: 0.90, GoldSellRate: 0.96,
		ReviewPriceThreshold: 1000, MinProfitForBuy: 50,
		EstimatedWeightProfitCap: 200,
	}, zap.NewNop())
	// One call per hour with burst 1: the second BUY in quick succession
	// has no budget left.
	c := NewCoordinator(client, noMedia{}, fixedPrice(160.34), validator, NewBudget(1), config.AnalysisConfig{
		Timeout:      5 * time.Second,
		Tier2Enabled: true,
	}, zap.NewNop())

	first := c.Analyze(context.Background(), bracelet(), "gold")
	require.Equal(t, core.RecommendationBuy, first.Recommendation)

	second := c.Analyze(context.Background(), bracelet(), "gold")
	assert.Equal(t, core.RecommendationResearch, second.Recommendation)
	assert.Contains(t, second.Reasoning, "budget_exhausted")
	assert.Equal(t, int32(3), atomic.LoadInt32(&client.calls), "no tier 2 call is spent when the budget is exhausted")
}

package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSpam struct {
	res SpamResult
}

func (s *stubSpam) RecordAndCheck(sellerName, identity string, at time.Time) SpamResult {
	return s.res
}

type stubCache struct {
	entries map[string]*CachedDecision
	puts    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*CachedDecision)}
}

func (c *stubCache) Get(ctx context.Context, key string) (*CachedDecision, bool) {
	e, ok := c.entries[key]
	return e, ok
}

func (c *stubCache) Put(ctx context.Context, key string, decision *Decision, html string) {
	c.puts++
	c.entries[key] = &CachedDecision{Decision: decision, HTML: html}
}

func (c *stubCache) Invalidate(ctx context.Context, key string) error { return nil }
func (c *stubCache) Cleanup(ctx context.Context) error                { return nil }
func (c *stubCache) Stats(ctx context.Context) CacheStats             { return CacheStats{} }

type stubRules struct {
	verdict *Decision
}

func (r *stubRules) Evaluate(ev *ListingEvent, category string) *Decision {
	return r.verdict
}

type stubAnalyzer struct {
	calls    int32
	decision *Decision
}

func (a *stubAnalyzer) Analyze(ctx context.Context, ev *ListingEvent, category string) *Decision {
	atomic.AddInt32(&a.calls, 1)
	d := *a.decision
	return &d
}

func buyDecision() *Decision {
	return &Decision{
		Qualify:        true,
		Recommendation: RecommendationBuy,
		Confidence:     85,
		Provenance:     ProvenanceTier1,
		AnalyzedAt:     time.Now(),
	}
}

func newTestService(spam SpamFilter, cache DecisionCache, rules RuleEvaluator, analyzer Analyzer) *EvaluatorService {
	return NewEvaluatorService(spam, cache, rules, analyzer, nil, zap.NewNop(), cache != nil)
}

func TestEvaluateMalformedInput(t *testing.T) {
	analyzer := &stubAnalyzer{decision: buyDecision()}
	svc := newTestService(&stubSpam{}, newStubCache(), &stubRules{}, analyzer)

	d, _ := svc.Evaluate(context.Background(), &ListingEvent{Title: "", TotalPrice: 0})
	assert.Equal(t, RecommendationPass, d.Recommendation)
	assert.Contains(t, d.Reasoning, "input_malformed")
	assert.Zero(t, atomic.LoadInt32(&analyzer.calls))
}

func TestEvaluateBlockedSeller(t *testing.T) {
	analyzer := &stubAnalyzer{decision: buyDecision()}
	svc := newTestService(&stubSpam{res: SpamResult{Spam: true}}, newStubCache(), &stubRules{}, analyzer)

	d, _ := svc.Evaluate(context.Background(), &ListingEvent{Title: "14k ring", TotalPrice: 50, SellerName: "burst-seller"})
	assert.Equal(t, RecommendationPass, d.Recommendation)
	assert.Contains(t, d.Reasoning, "blocked_seller")
	assert.Zero(t, atomic.LoadInt32(&analyzer.calls))
}

func TestEvaluateDuplicateSuppressed(t *testing.T) {
	analyzer := &stubAnalyzer{decision: buyDecision()}
	svc := newTestService(&stubSpam{res: SpamResult{Duplicate: true}}, newStubCache(), &stubRules{}, analyzer)

	d, _ := svc.Evaluate(context.Background(), &ListingEvent{Title: "14k ring", TotalPrice: 50})
	assert.Equal(t, RecommendationPass, d.Recommendation)
	assert.Contains(t, d.Reasoning, "duplicate_suppressed")
	assert.Zero(t, atomic.LoadInt32(&analyzer.calls))
}

func TestEvaluateCacheHitBeatsDuplicate(t *testing.T) {
	// A live cache entry for a duplicate identity must be served, not
	// suppressed.
	analyzer := &stubAnalyzer{decision: buyDecision()}
	cache := newStubCache()
	svc := newTestService(&stubSpam{res: SpamResult{Duplicate: true}}, cache, &stubRules{}, analyzer)

	ev := &ListingEvent{Title: "14K Gold Bracelet 12 Grams", TotalPrice: 180}
	key := CacheKey(ev.Title, ev.TotalPrice, DetectCategory(ev))
	cache.entries[key] = &CachedDecision{Decision: buyDecision()}

	d, _ := svc.Evaluate(context.Background(), ev)
	assert.Equal(t, RecommendationBuy, d.Recommendation)
	assert.Equal(t, ProvenanceCache, d.Provenance)
	assert.Zero(t, atomic.LoadInt32(&analyzer.calls))
}

func TestEvaluateRuleVerdictCached(t *testing.T) {
	verdict := &Decision{
		Recommendation: RecommendationPass,
		Confidence:     90,
		Provenance:     ProvenanceInstantRule,
		Reasoning:      []string{`no-value marker: "gold plated"`},
	}
	analyzer := &stubAnalyzer{decision: buyDecision()}
	cache := newStubCache()
	svc := newTestService(&stubSpam{}, cache, &stubRules{verdict: verdict}, analyzer)

	d, _ := svc.Evaluate(context.Background(), &ListingEvent{Title: "gold plated chain", TotalPrice: 20})
	require.Equal(t, RecommendationPass, d.Recommendation)
	assert.NotEmpty(t, d.ProcessingID)
	assert.Equal(t, 1, cache.puts)
	assert.Zero(t, atomic.LoadInt32(&analyzer.calls))
}

func TestEvaluateAnalysisPathIdempotent(t *testing.T) {
	analyzer := &stubAnalyzer{decision: buyDecision()}
	cache := newStubCache()
	svc := newTestService(&stubSpam{}, cache, &stubRules{}, analyzer)

	ev := &ListingEvent{Title: "14K Gold Bracelet 12 Grams", TotalPrice: 180}

	first, _ := svc.Evaluate(context.Background(), ev)
	require.Equal(t, RecommendationBuy, first.Recommendation)
	require.Equal(t, int32(1), atomic.LoadInt32(&analyzer.calls))

	// Identical event inside the TTL must come from the cache without a
	// second analysis.
	second, _ := svc.Evaluate(context.Background(), ev)
	assert.Equal(t, first.Recommendation, second.Recommendation)
	assert.Equal(t, ProvenanceCache, second.Provenance)
	assert.Equal(t, int32(1), atomic.LoadInt32(&analyzer.calls))
}

type stubRenderer struct {
	renders int32
}

func (r *stubRenderer) RenderHTML(d *Decision, ev *ListingEvent) string {
	atomic.AddInt32(&r.renders, 1)
	return "<html>" + string(d.Recommendation) + "</html>"
}

func TestEvaluateServesStoredDisplayPayload(t *testing.T) {
	// The payload rendered at store time comes back on the triggering
	// request and on every cache hit, without re-rendering.
	analyzer := &stubAnalyzer{decision: buyDecision()}
	cache := newStubCache()
	renderer := &stubRenderer{}
	svc := NewEvaluatorService(&stubSpam{}, cache, &stubRules{}, analyzer, renderer, zap.NewNop(), true)

	ev := &ListingEvent{Title: "14K Gold Bracelet 12 Grams", TotalPrice: 180}

	first, firstHTML := svc.Evaluate(context.Background(), ev)
	require.Equal(t, RecommendationBuy, first.Recommendation)
	require.Equal(t, "<html>BUY</html>", firstHTML)
	require.Equal(t, int32(1), atomic.LoadInt32(&renderer.renders))

	second, secondHTML := svc.Evaluate(context.Background(), ev)
	assert.Equal(t, ProvenanceCache, second.Provenance)
	assert.Equal(t, firstHTML, secondHTML)
	assert.Equal(t, int32(1), atomic.LoadInt32(&renderer.renders))
}

func TestEvaluateCacheDisabled(t *testing.T) {
	analyzer := &stubAnalyzer{decision: buyDecision()}
	svc := NewEvaluatorService(&stubSpam{}, nil, &stubRules{}, analyzer, nil, zap.NewNop(), false)

	ev := &ListingEvent{Title: "14K Gold Bracelet 12 Grams", TotalPrice: 180}
	svc.Evaluate(context.Background(), ev)
	svc.Evaluate(context.Background(), ev)
	assert.Equal(t, int32(2), atomic.LoadInt32(&analyzer.calls))
}

package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Analyzer is the costly path: coordinator plus validation, already
// composed. It must always return a decision.
type Analyzer interface {
	Analyze(ctx context.Context, ev *ListingEvent, category string) *Decision
}

// RuleEvaluator is the zero-cost filtering pass. A nil decision means
// no verdict.
type RuleEvaluator interface {
	Evaluate(ev *ListingEvent, category string) *Decision
}

// Renderer produces the display payload stored alongside a decision so
// both response shapes are servable from one cache entry.
type Renderer interface {
	RenderHTML(d *Decision, ev *ListingEvent) string
}

// EvaluatorService is the orchestrator: it composes the spam filter,
// cache, rules engine and analysis coordinator into one decision per
// inbound event. It never fails for business outcomes — every path
// returns a Decision.
type EvaluatorService struct {
	spam         SpamFilter
	cache        DecisionCache
	rules        RuleEvaluator
	analyzer     Analyzer
	renderer     Renderer
	logger       *zap.Logger
	cacheEnabled bool
	inflight     singleflight.Group
	now          func() time.Time
}

// NewEvaluatorService creates a new evaluator service
func NewEvaluatorService(
	spam SpamFilter,
	cache DecisionCache,
	rules RuleEvaluator,
	analyzer Analyzer,
	renderer Renderer,
	logger *zap.Logger,
	cacheEnabled bool,
) *EvaluatorService {
	return &EvaluatorService{
		spam:         spam,
		cache:        cache,
		rules:        rules,
		analyzer:     analyzer,
		renderer:     renderer,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		now:          time.Now,
	}
}

// evalOutcome carries a decision together with the display payload
// rendered when it was stored, so cache hits serve it back verbatim.
type evalOutcome struct {
	decision *Decision
	html     string
}

// Evaluate runs the full decision pipeline for one listing event. The
// returned display payload is non-empty when one was rendered at store
// time or recovered from the cache; callers render on demand otherwise.
func (s *EvaluatorService) Evaluate(ctx context.Context, ev *ListingEvent) (*Decision, string) {
	if !ev.Valid() {
		return &Decision{
			Recommendation: RecommendationPass,
			Reasoning:      []string{"input_malformed"},
			Provenance:     ProvenanceInstantRule,
			AnalyzedAt:     s.now(),
		}, ""
	}

	category := DetectCategory(ev)
	key := CacheKey(ev.Title, ev.TotalPrice, category)

	// Activity is recorded before the blocked check so a spam burst can
	// block its own triggering event.
	spamRes := s.spam.RecordAndCheck(ev.SellerName, ev.Identity(), s.now())
	if spamRes.Spam {
		s.logger.Info("Blocked seller",
			zap.String("seller", ev.SellerName),
			zap.Bool("newly_blocked", spamRes.NewlyBlocked))
		return &Decision{
			Recommendation: RecommendationPass,
			Reasoning:      []string{"blocked_seller"},
			Provenance:     ProvenanceInstantRule,
			Category:       category,
			AnalyzedAt:     s.now(),
		}, ""
	}

	if cached, html := s.lookupCache(ctx, key); cached != nil {
		return cached, html
	}

	// A duplicate identity inside the dedup window without a live cache
	// entry still suppresses re-analysis.
	if spamRes.Duplicate {
		s.logger.Debug("Duplicate listing suppressed", zap.String("title", ev.Title))
		return &Decision{
			Recommendation: RecommendationPass,
			Reasoning:      []string{"duplicate_suppressed"},
			Provenance:     ProvenanceCache,
			Category:       category,
			AnalyzedAt:     s.now(),
		}, ""
	}

	if verdict := s.rules.Evaluate(ev, category); verdict != nil {
		verdict.ProcessingID = uuid.NewString()
		return verdict, s.storeCache(ctx, key, verdict, ev)
	}

	// Concurrent requests for the same cache key coalesce onto one
	// in-flight analysis; losers get the winner's decision.
	v, _, shared := s.inflight.Do(key, func() (interface{}, error) {
		d := s.analyzer.Analyze(ctx, ev, category)
		if d.ProcessingID == "" {
			d.ProcessingID = uuid.NewString()
		}
		return &evalOutcome{decision: d, html: s.storeCache(ctx, key, d, ev)}, nil
	})
	outcome := v.(*evalOutcome)
	if shared {
		s.logger.Debug("Coalesced onto in-flight analysis", zap.String("key", key))
	}
	return outcome.decision, outcome.html
}

func (s *EvaluatorService) lookupCache(ctx context.Context, key string) (*Decision, string) {
	if !s.cacheEnabled || s.cache == nil {
		return nil, ""
	}
	entry, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, ""
	}
	d := *entry.Decision
	d.Provenance = ProvenanceCache
	s.logger.Debug("Cache hit", zap.String("key", key), zap.String("recommendation", string(d.Recommendation)))
	return &d, entry.HTML
}

// storeCache writes the decision with its rendered display payload and
// returns the payload so the triggering request can serve it too.
func (s *EvaluatorService) storeCache(ctx context.Context, key string, d *Decision, ev *ListingEvent) string {
	if !s.cacheEnabled || s.cache == nil {
		return ""
	}
	html := ""
	if s.renderer != nil {
		html = s.renderer.RenderHTML(d, ev)
	}
	s.cache.Put(ctx, key, d, html)
	return html
}

// DetectCategory infers the valuation category from the listing.
// Unknown categories evaluate with no reference value and lean on the
// rules engine to pass them cheaply.
func DetectCategory(ev *ListingEvent) string {
	title := strings.ToLower(strings.ReplaceAll(ev.Title, "+", " "))
	hint := strings.ToLower(ev.CategoryHint)

	goldMarkers := []string{"14k", "10k", "18k", "22k", "24k", "9k", "585", "750", "916", "417", "solid gold", "yellow gold", "white gold", "rose gold"}
	for _, m := range goldMarkers {
		if strings.Contains(title, m) {
			return "gold"
		}
	}
	silverMarkers := []string{"sterling", "925", ".925", "silver flatware", "solid silver"}
	for _, m := range silverMarkers {
		if strings.Contains(title, m) {
			return "silver"
		}
	}
	if strings.Contains(hint, "gold") {
		return "gold"
	}
	if strings.Contains(hint, "silver") {
		return "silver"
	}
	return ""
}

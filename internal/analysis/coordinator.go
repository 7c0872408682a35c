// Package analysis drives the staged escalation to the external
// analysis provider. Tier 1 always runs; Tier 2 runs only to verify a
// Tier 1 BUY, and its verdict is authoritative when it does.
package analysis

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/valuation"
)

// Coordinator owns the costly path of the pipeline.
type Coordinator struct {
	client    core.AnalysisClient
	media     core.MediaFetcher
	prices    core.PriceSource
	validator *valuation.Validator
	budget    *Budget
	timeout   time.Duration
	retries   int
	tier2     bool
	logger    *zap.Logger
}

// NewCoordinator creates a new analysis coordinator
func NewCoordinator(
	client core.AnalysisClient,
	media core.MediaFetcher,
	prices core.PriceSource,
	validator *valuation.Validator,
	budget *Budget,
	cfg config.AnalysisConfig,
	logger *zap.Logger,
) *Coordinator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Coordinator{
		client:    client,
		media:     media,
		prices:    prices,
		validator: validator,
		budget:    budget,
		timeout:   timeout,
		retries:   cfg.Retries,
		tier2:     cfg.Tier2Enabled,
		logger:    logger,
	}
}

// Analyze runs the two-tier escalation for one event and returns a
// validated decision. It never returns an error: provider failure
// degrades to a RESEARCH decision instead.
func (c *Coordinator) Analyze(ctx context.Context, ev *core.ListingEvent, category string) *core.Decision {
	spot, err := c.prices.ReferenceValue(ctx, category, ev.Title)
	if err != nil {
		if !errors.Is(err, core.ErrReferenceNotFound) {
			c.logger.Warn("Reference lookup failed", zap.Error(err), zap.String("category", category))
		}
		spot = 0
	}

	media := c.media.Fetch(ctx, ev.MediaURLs)

	req := &core.AnalysisRequest{
		Event:          ev,
		Tier:           core.TierFirst,
		Category:       category,
		ReferenceValue: spot,
		Media:          media,
	}

	tier1, err := c.callWithRetry(ctx, req)
	if err != nil {
		return c.validator.Validate(degradedResult(core.TierFirst, err), ev, category, spot)
	}

	decision := c.validator.Validate(tier1, ev, category, spot)
	if !c.tier2 || tier1.Recommendation != core.RecommendationBuy {
		return decision
	}

	if !c.budget.Allow() {
		decision.Downgrade(core.RecommendationResearch, "budget_exhausted")
		return decision
	}

	// The verification call completes even if the client disconnects:
	// the cost is already committed and the result is still cacheable.
	verifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	tier2, err := c.client.Analyze(verifyCtx, &core.AnalysisRequest{
		Event:          ev,
		Tier:           core.TierVerify,
		Category:       category,
		ReferenceValue: spot,
		Media:          media,
		PriorResult:    tier1,
	})
	if err != nil {
		c.logger.Warn("Tier 2 verification failed, keeping tier 1 verdict", zap.Error(err))
		decision.Reasoning = append(decision.Reasoning, "tier2_unavailable")
		return decision
	}

	verified := c.validator.Validate(tier2, ev, category, spot)
	if tier2.Recommendation != core.RecommendationBuy {
		c.logger.Info("Tier 2 overrode tier 1 BUY",
			zap.String("title", ev.Title),
			zap.String("tier2", string(tier2.Recommendation)))
	}
	return verified
}

// callWithRetry performs the Tier 1 call with one retry on transient
// network failure. Timeouts and malformed output are not retried; they
// degrade at the validation layer.
func (c *Coordinator) callWithRetry(ctx context.Context, req *core.AnalysisRequest) (*core.TierResult, error) {
	attempts := c.retries + 1
	var lastErr error
	for i := 0; i < attempts; i++ {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		res, err := c.client.Analyze(callCtx, req)
		cancel()
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !isTransient(err) {
			break
		}
		c.logger.Debug("Retrying provider call after transient failure", zap.Error(err), zap.Int("attempt", i+1))
	}
	return nil, lastErr
}

func isTransient(err error) bool {
	if errors.Is(err, core.ErrProviderTimeout) || errors.Is(err, core.ErrProviderMalformed) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Unclassified provider errors get the single retry.
	return !errors.Is(err, context.Canceled)
}

func degradedResult(tier core.Tier, err error) *core.TierResult {
	status := core.TierMalformed
	if errors.Is(err, core.ErrProviderTimeout) || errors.Is(err, context.DeadlineExceeded) {
		status = core.TierTimeout
	}
	return &core.TierResult{Tier: tier, Status: status, Recommendation: core.RecommendationResearch}
}

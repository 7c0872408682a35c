package valuation

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/seller"
)

// Validator re-derives financials from the provider's extracted inputs
// and enforces the downgrade-only business invariants.
type Validator struct {
	cfg    config.ValuationConfig
	logger *zap.Logger
}

// NewValidator creates a new validator
func NewValidator(cfg config.ValuationConfig, logger *zap.Logger) *Validator {
	return &Validator{cfg: cfg, logger: logger}
}

// Validate turns a raw tier result into a Decision. The recommendation
// class of the output never ranks above the provider's.
func (v *Validator) Validate(raw *core.TierResult, ev *core.ListingEvent, category string, spotPerGram float64) *core.Decision {
	prov := core.ProvenanceTier1
	if raw.Tier == core.TierVerify {
		prov = core.ProvenanceTier2
	}

	sellerScore, sellerReasons := seller.Score(ev)
	sellerTier := seller.Tier(sellerScore)

	d := &core.Decision{
		Recommendation: raw.Recommendation,
		Confidence:     raw.Confidence,
		Category:       category,
		Provenance:     prov,
		SellerScore:    sellerScore,
		SellerTier:     sellerTier,
		AnalyzedAt:     time.Now(),
		ProcessingID:   raw.ProcessingID,
	}

	switch raw.Status {
	case core.TierTimeout:
		d.Recommendation = core.RecommendationResearch
		d.Confidence = 0
		d.Reasoning = []string{"provider_timeout"}
		return d
	case core.TierMalformed:
		d.Recommendation = core.RecommendationResearch
		d.Confidence = 0
		d.Reasoning = []string{"provider_malformed"}
		return d
	}

	if raw.Reasoning != "" {
		d.Reasoning = append(d.Reasoning, raw.Reasoning)
	}

	maxBuyRate, sellRate := v.ratesFor(category)

	// Independent recomputation. Only trust provider numbers when we
	// have no inputs of our own to recompute from.
	purity := Purity(category, raw.Karat)
	melt := Melt(raw.WeightGrams, purity, spotPerGram)
	if melt > 0 {
		d.MarketPrice = round2(melt * sellRate)
		d.MaxBuy = round2(melt * maxBuyRate)
		d.Profit = round2(d.MarketPrice - ev.TotalPrice)

		if raw.MaxBuy > d.MaxBuy*1.05 {
			d.Reasoning = append(d.Reasoning,
				fmt.Sprintf("provider max buy $%.2f exceeded recomputed ceiling $%.2f, using recomputed", raw.MaxBuy, d.MaxBuy))
		}
	} else {
		d.MarketPrice = raw.MarketPrice
		d.MaxBuy = round2(raw.MarketPrice * maxBuyRate)
		if raw.MaxBuy > 0 && raw.MaxBuy < d.MaxBuy {
			d.MaxBuy = raw.MaxBuy
		}
		d.Profit = round2(d.MarketPrice - ev.TotalPrice)
	}

	// Hard invariants, applied as downgrades only.
	if !WeightSane(raw.WeightGrams, ev.Title, category) {
		d.Downgrade(core.RecommendationResearch,
			fmt.Sprintf("suspicious weight %.1fg for item type", raw.WeightGrams))
	}

	if d.MaxBuy > 0 && ev.TotalPrice > d.MaxBuy {
		d.Downgrade(core.RecommendationPass,
			fmt.Sprintf("price $%.2f above max buy $%.2f", ev.TotalPrice, d.MaxBuy))
	}

	if ev.TotalPrice >= v.cfg.ReviewPriceThreshold {
		d.Downgrade(core.RecommendationResearch,
			fmt.Sprintf("price $%.2f above review threshold $%.2f", ev.TotalPrice, v.cfg.ReviewPriceThreshold))
	}

	if raw.WeightSource == "estimate" && d.Profit > v.cfg.EstimatedWeightProfitCap {
		d.Profit = v.cfg.EstimatedWeightProfitCap
		d.Downgrade(core.RecommendationResearch, "profit capped: weight is an estimate")
	}

	if d.Recommendation == core.RecommendationBuy && d.Profit < v.cfg.MinProfitForBuy {
		d.Downgrade(core.RecommendationResearch,
			fmt.Sprintf("profit $%.2f below minimum $%.2f", d.Profit, v.cfg.MinProfitForBuy))
	}

	if sellerTier == seller.TierLow {
		d.Downgrade(core.RecommendationResearch, "low seller reputation tier")
		d.Reasoning = append(d.Reasoning, sellerReasons...)
	}

	d.Qualify = d.Recommendation == core.RecommendationBuy
	if d.Recommendation != raw.Recommendation {
		v.logger.Info("Validation downgraded provider recommendation",
			zap.String("from", string(raw.Recommendation)),
			zap.String("to", string(d.Recommendation)),
			zap.String("title", ev.Title))
	}
	return d
}

// ratesFor returns (maxBuyRate, sellRate) for the category. The ceiling
// is always a fraction of recomputed value, never an absolute cap.
func (v *Validator) ratesFor(category string) (float64, float64) {
	if category == "silver" {
		return v.cfg.SilverMaxBuyRate, v.cfg.SilverSellRate
	}
	return v.cfg.GoldMaxBuyRate, v.cfg.GoldSellRate
}

func round2(f float64) float64 {
	if f < 0 {
		return float64(int64(f*100-0.5)) / 100
	}
	return float64(int64(f*100+0.5)) / 100
}

package rules

import (
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// SpotSource supplies cached per-gram spot prices without blocking.
type SpotSource interface {
	SpotPerGram(category string) float64
}

// Generous upper-bound item weights used by the price sanity rule.
var sanityWeights = map[string]float64{
	"gold":   200,
	"silver": 1000,
}

// PricedEngine binds the stateless rule list to a spot source,
// satisfying the orchestrator's RuleEvaluator contract.
type PricedEngine struct {
	engine *Engine
	spot   SpotSource
}

// NewPricedEngine creates a new priced rule evaluator
func NewPricedEngine(engine *Engine, spot SpotSource) *PricedEngine {
	return &PricedEngine{engine: engine, spot: spot}
}

// Evaluate builds the reference data for the category and runs the
// rule list.
func (p *PricedEngine) Evaluate(ev *core.ListingEvent, category string) *core.Decision {
	ref := ReferenceData{Category: category}
	if category != "" && p.spot != nil {
		ref.SpotPerGram = p.spot.SpotPerGram(category)
		ref.SanityWeight = sanityWeights[category]
	}
	return p.engine.Evaluate(ev, ref)
}

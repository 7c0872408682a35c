// Package rules implements the zero-cost filtering pass that runs before
// any provider call. Rules are an ordered list of mutually exclusive
// predicates; the first match wins and the rest are never consulted.
package rules

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// Keywords that indicate an item has no extractable metal value.
var instantPassKeywords = []string{
	"gold plated", "gold-plated", "goldplated",
	"silver plated", "silver-plated", "silverplated",
	"gold filled", "gold-filled", "goldfilled",
	"rolled gold", "gold tone", "goldtone",
	"silver tone", "silvertone",
	"costume jewelry", "fashion jewelry",
	"reproduction", "replica", "fake",
	"cubic zirconia",
	"single earring", "one earring",
}

// Keywords that force manual review instead of an automatic buy.
var researchKeywords = []string{
	"untested", "unknown metal", "unmarked",
	"estate find", "as is", "sold as is",
}

// Signals that the title describes weighable precious metal.
var valueMarkers = []string{
	"14k", "10k", "18k", "22k", "24k", "9k",
	"585", "750", "916", "417", "375",
	"sterling", "925", "900", "800",
	"solid gold", "solid silver", "gram", "grams", "dwt", "ozt",
}

// ReferenceData is the externally supplied pricing context a rule may
// consult. Rules themselves never perform I/O.
type ReferenceData struct {
	Category     string
	SpotPerGram  float64
	SanityWeight float64 // generous upper-bound weight for the category, grams
}

// Verdict is a terminal outcome produced by a rule.
type Verdict struct {
	Recommendation core.Recommendation
	Provenance     core.Provenance
	Reason         string
}

// Rule is one predicate in the priority list.
type Rule struct {
	Name  string
	Match func(ev *core.ListingEvent, ref ReferenceData) *Verdict
}

// Engine evaluates the fixed rule list against listing events.
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEngine creates a new rules engine with the default rule priority.
func NewEngine(sanityMultiple float64, logger *zap.Logger) *Engine {
	return &Engine{
		logger: logger,
		rules: []Rule{
			{Name: "plated-marker", Match: matchKeywords(instantPassKeywords, core.RecommendationPass, core.ProvenanceInstantRule, "no-value marker")},
			{Name: "research-marker", Match: matchKeywords(researchKeywords, core.RecommendationResearch, core.ProvenanceInstantRule, "needs manual verification")},
			{Name: "no-extractable-value", Match: matchNoValue},
			{Name: "price-sanity", Match: matchPriceSanity(sanityMultiple)},
		},
	}
}

// Evaluate runs the rules in priority order. A nil return means no
// verdict and the pipeline continues to analysis.
func (e *Engine) Evaluate(ev *core.ListingEvent, ref ReferenceData) *core.Decision {
	for _, rule := range e.rules {
		if v := rule.Match(ev, ref); v != nil {
			e.logger.Debug("Rule matched",
				zap.String("rule", rule.Name),
				zap.String("recommendation", string(v.Recommendation)))
			return &core.Decision{
				Qualify:        false,
				Recommendation: v.Recommendation,
				Confidence:     90,
				Category:       ref.Category,
				Reasoning:      []string{v.Reason},
				Provenance:     v.Provenance,
				AnalyzedAt:     time.Now(),
			}
		}
	}
	return nil
}

func matchKeywords(keywords []string, rec core.Recommendation, prov core.Provenance, label string) func(*core.ListingEvent, ReferenceData) *Verdict {
	return func(ev *core.ListingEvent, _ ReferenceData) *Verdict {
		title := normalizeTitle(ev.Title)
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				return &Verdict{
					Recommendation: rec,
					Provenance:     prov,
					Reason:         fmt.Sprintf("%s: %q", label, kw),
				}
			}
		}
		return nil
	}
}

// matchNoValue passes listings with no category hint and no signal that
// the title describes weighable metal.
func matchNoValue(ev *core.ListingEvent, ref ReferenceData) *Verdict {
	if ref.Category != "" {
		return nil
	}
	title := normalizeTitle(ev.Title)
	for _, marker := range valueMarkers {
		if strings.Contains(title, marker) {
			return nil
		}
	}
	return &Verdict{
		Recommendation: core.RecommendationPass,
		Provenance:     core.ProvenanceFastRule,
		Reason:         "no extractable value signal in title",
	}
}

// matchPriceSanity passes listings priced far above any plausible melt
// ceiling for the category. Needs reference data; inert without it.
func matchPriceSanity(multiple float64) func(*core.ListingEvent, ReferenceData) *Verdict {
	return func(ev *core.ListingEvent, ref ReferenceData) *Verdict {
		if ref.SpotPerGram <= 0 || ref.SanityWeight <= 0 {
			return nil
		}
		ceiling := ref.SpotPerGram * ref.SanityWeight * multiple
		if ev.TotalPrice > ceiling {
			return &Verdict{
				Recommendation: core.RecommendationPass,
				Provenance:     core.ProvenanceFastRule,
				Reason: fmt.Sprintf("price $%.2f far above plausible valuation $%.2f for %s",
					ev.TotalPrice, ceiling, ref.Category),
			}
		}
		return nil
	}
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.ReplaceAll(title, "+", " "))
}

// Package utils holds the prompt construction and response parsing
// shared by the provider adapters.
package utils

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// BuildPrompt renders the provider prompt for one escalation call. The
// verification pass includes the first pass's verdict and asks for a
// stricter re-check.
func BuildPrompt(req *core.AnalysisRequest) string {
	var b strings.Builder

	b.WriteString("You evaluate marketplace listings for resale arbitrage.\n")
	b.WriteString("Respond with a JSON object containing:\n")
	b.WriteString("- qualify: boolean\n")
	b.WriteString("- recommendation: \"BUY\", \"RESEARCH\" or \"PASS\"\n")
	b.WriteString("- confidence: integer 0-100\n")
	b.WriteString("- reasoning: string (brief)\n")
	b.WriteString("- karat: string (metal marking if present, e.g. \"14k\", \"sterling\")\n")
	b.WriteString("- weight_grams: number (0 if unknown)\n")
	b.WriteString("- weight_source: \"scale\", \"stated\" or \"estimate\"\n")
	b.WriteString("- item_type: string\n")
	b.WriteString("- market_price: number\n")
	b.WriteString("- max_buy: number\n")
	b.WriteString("- profit: number\n\n")

	if req.Tier == core.TierVerify && req.PriorResult != nil {
		b.WriteString("This is a VERIFICATION pass. A first-pass model recommended ")
		b.WriteString(string(req.PriorResult.Recommendation))
		fmt.Fprintf(&b, " with confidence %d. Re-check its extraction and arithmetic strictly; reject the buy if anything is doubtful.\n\n", req.PriorResult.Confidence)
	}

	fmt.Fprintf(&b, "Listing:\nTitle: %s\nTotal price: $%.2f\n", req.Event.Title, req.Event.TotalPrice)
	if req.Event.Condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", req.Event.Condition)
	}
	if req.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", req.Category)
	}
	if req.ReferenceValue > 0 {
		fmt.Fprintf(&b, "Reference spot price: $%.2f per gram of pure %s\n", req.ReferenceValue, req.Category)
	}
	if req.Event.SellerName != "" {
		fmt.Fprintf(&b, "Seller: %s (feedback %d)\n", req.Event.SellerName, req.Event.FeedbackScore)
	}
	for k, v := range req.Event.Attributes {
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}

	b.WriteString("\nRespond only with the JSON object and nothing else.")
	return b.String()
}

// ParseTierResult extracts a TierResult from raw provider text. It
// tolerates prose around the JSON object; anything without a usable
// recommendation maps to ErrProviderMalformed.
func ParseTierResult(text string, tier core.Tier, model string) (*core.TierResult, error) {
	jsonStr := extractJSON(text)
	if jsonStr == "" || !gjson.Valid(jsonStr) {
		return nil, fmt.Errorf("no JSON object in provider output: %w", core.ErrProviderMalformed)
	}

	rec := strings.ToUpper(gjson.Get(jsonStr, "recommendation").String())
	switch core.Recommendation(rec) {
	case core.RecommendationBuy, core.RecommendationResearch, core.RecommendationPass:
	default:
		return nil, fmt.Errorf("unusable recommendation %q: %w", rec, core.ErrProviderMalformed)
	}

	weightSource := strings.ToLower(gjson.Get(jsonStr, "weight_source").String())
	switch weightSource {
	case "scale", "stated":
	default:
		weightSource = "estimate"
	}

	return &core.TierResult{
		Tier:           tier,
		Status:         core.TierSuccess,
		Recommendation: core.Recommendation(rec),
		Confidence:     int(gjson.Get(jsonStr, "confidence").Int()),
		Reasoning:      gjson.Get(jsonStr, "reasoning").String(),
		Karat:          gjson.Get(jsonStr, "karat").String(),
		WeightGrams:    gjson.Get(jsonStr, "weight_grams").Float(),
		WeightSource:   weightSource,
		ItemType:       gjson.Get(jsonStr, "item_type").String(),
		MarketPrice:    gjson.Get(jsonStr, "market_price").Float(),
		MaxBuy:         gjson.Get(jsonStr, "max_buy").Float(),
		Profit:         gjson.Get(jsonStr, "profit").Float(),
		ModelUsed:      model,
	}, nil
}

// extractJSON returns the outermost brace-delimited object in text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

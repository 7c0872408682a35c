package core

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Recommendation classifies the outcome of evaluating a listing.
type Recommendation string

const (
	RecommendationBuy      Recommendation = "BUY"
	RecommendationResearch Recommendation = "RESEARCH"
	RecommendationPass     Recommendation = "PASS"
)

// Rank orders recommendations by severity: BUY > RESEARCH > PASS.
// Validation may only move a decision toward lower ranks.
func (r Recommendation) Rank() int {
	switch r {
	case RecommendationBuy:
		return 2
	case RecommendationResearch:
		return 1
	default:
		return 0
	}
}

// Provenance identifies which pipeline stage produced a decision.
type Provenance string

const (
	ProvenanceCache       Provenance = "cache"
	ProvenanceInstantRule Provenance = "instant-rule"
	ProvenanceFastRule    Provenance = "fast-rule"
	ProvenanceTier1       Provenance = "tier1"
	ProvenanceTier2       Provenance = "tier2"
)

// Tier identifies which escalation pass a provider call belongs to.
type Tier int

const (
	TierFirst  Tier = 1
	TierVerify Tier = 2
)

// ListingEvent is one inbound marketplace alert. It is never mutated
// after parsing.
type ListingEvent struct {
	Title         string
	TotalPrice    float64
	ItemPrice     float64
	SellerName    string
	FeedbackScore int
	CategoryHint  string
	Condition     string
	BestOffer     bool
	UPC           string
	Description   string
	PostedAt      time.Time
	MediaURLs     []string
	Attributes    map[string]string
}

// Valid reports whether the event carries the fields the pipeline
// cannot work without.
func (e *ListingEvent) Valid() bool {
	return e != nil && strings.TrimSpace(e.Title) != "" && e.TotalPrice > 0
}

// Identity is the normalized title+price+seller key used for duplicate
// suppression.
func (e *ListingEvent) Identity() string {
	return fmt.Sprintf("%s|%s", CacheKey(e.Title, e.TotalPrice, ""), strings.ToLower(strings.TrimSpace(e.SellerName)))
}

var titleFolder = cases.Fold()

// CacheKey derives the content-addressed cache key for a listing.
// Collisions are only possible within the same normalized identity.
func CacheKey(title string, price float64, category string) string {
	normalized := titleFolder.String(strings.TrimSpace(title))
	normalized = strings.Join(strings.Fields(normalized), " ")
	runes := []rune(normalized)
	if len(runes) > 100 {
		normalized = string(runes[:100])
	}
	if category != "" {
		return fmt.Sprintf("%s_%.2f_%s", normalized, price, strings.ToLower(category))
	}
	return fmt.Sprintf("%s_%.2f", normalized, price)
}

// Decision is the final output of the pipeline for one listing event.
type Decision struct {
	Qualify        bool
	Recommendation Recommendation
	Confidence     int
	Category       string

	// Category-specific financials, recomputed server-side.
	MarketPrice float64
	MaxBuy      float64
	Profit      float64

	Reasoning    []string
	Provenance   Provenance
	SellerScore  int
	SellerTier   string
	AnalyzedAt   time.Time
	ProcessingID string
}

// Downgrade lowers the recommendation to at most max, appending the
// given reason. It never raises the class.
func (d *Decision) Downgrade(max Recommendation, reason string) {
	if d.Recommendation.Rank() > max.Rank() {
		d.Recommendation = max
		d.Qualify = d.Recommendation == RecommendationBuy
		d.Reasoning = append(d.Reasoning, reason)
	}
}

// TierStatus tags the outcome of one provider call. The validation
// layer must handle all three cases explicitly.
type TierStatus int

const (
	TierSuccess TierStatus = iota
	TierTimeout
	TierMalformed
)

// TierResult is the raw structured output from a single escalation
// call, before server-side validation.
type TierResult struct {
	Tier           Tier
	Status         TierStatus
	Recommendation Recommendation
	Confidence     int
	Reasoning      string

	// Extracted inputs the validator recomputes from.
	Karat        string
	WeightGrams  float64
	WeightSource string // "scale", "stated" or "estimate"
	ItemType     string

	// Provider arithmetic, treated as untrusted.
	MarketPrice float64
	MaxBuy      float64
	Profit      float64

	ModelUsed    string
	ProcessingID string
}

// CachedDecision pairs a stored decision with its display payload so
// both response shapes can be served from one cache entry.
type CachedDecision struct {
	Decision   *Decision
	HTML       string
	InsertedAt time.Time
	ExpiresAt  time.Time
	Hits       int
}

// CacheStats is the administrative view of the decision cache.
type CacheStats struct {
	Size        int
	MaxSize     int
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	ByClass     map[Recommendation]int
}

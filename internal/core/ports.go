package core

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrProviderTimeout indicates the analysis provider did not answer
	// within the configured deadline.
	ErrProviderTimeout = errors.New("analysis provider timed out")

	// ErrProviderMalformed indicates the provider answered with output
	// that could not be parsed into a TierResult.
	ErrProviderMalformed = errors.New("analysis provider returned malformed output")

	// ErrReferenceNotFound indicates the price reference has no value
	// for the requested category.
	ErrReferenceNotFound = errors.New("reference value not found")
)

// MediaAttachment is one fetched listing image, ready to attach to a
// provider request.
type MediaAttachment struct {
	URL       string
	Data      []byte
	MediaType string
}

// AnalysisRequest carries everything one escalation call needs.
type AnalysisRequest struct {
	Event          *ListingEvent
	Tier           Tier
	Category       string
	ReferenceValue float64 // per-gram spot for the category, 0 if unknown
	Media          []MediaAttachment

	// PriorResult is the Tier 1 output when Tier == TierVerify.
	PriorResult *TierResult
}

// AnalysisClient is the boundary to the external analysis provider.
// Implementations must map deadline expiry to ErrProviderTimeout and
// unparseable output to ErrProviderMalformed.
type AnalysisClient interface {
	Analyze(ctx context.Context, req *AnalysisRequest) (*TierResult, error)
}

// DecisionCache stores prior decisions keyed by normalized listing
// identity, with per-recommendation-class TTLs.
type DecisionCache interface {
	Get(ctx context.Context, key string) (*CachedDecision, bool)
	Put(ctx context.Context, key string, decision *Decision, html string)
	Invalidate(ctx context.Context, key string) error
	Cleanup(ctx context.Context) error
	Stats(ctx context.Context) CacheStats
}

// SpamResult reports what the spam/duplicate filter saw for one event.
type SpamResult struct {
	Spam         bool
	Duplicate    bool
	NewlyBlocked bool
}

// SpamFilter tracks per-seller activity and duplicate listings across
// all concurrent requests.
type SpamFilter interface {
	// RecordAndCheck records the event and reports whether the seller is
	// (now) blocked or the listing identity was recently evaluated.
	RecordAndCheck(sellerName, identity string, at time.Time) SpamResult
}

// BlocklistStore is the durable set of excluded sellers.
type BlocklistStore interface {
	Contains(sellerName string) bool
	Add(ctx context.Context, sellerName string) (bool, error)
	Remove(ctx context.Context, sellerName string) (bool, error)
	All(ctx context.Context) ([]string, error)
	Import(ctx context.Context, sellerNames []string) (added int, skipped int, err error)
	Count() int
}

// PriceSource looks up the external reference value used to bound
// computed financials. Returns ErrReferenceNotFound for categories the
// source does not cover.
type PriceSource interface {
	ReferenceValue(ctx context.Context, category, query string) (float64, error)
}

// MediaFetcher retrieves listing images with bounded concurrency.
// Partial failure is not an error; callers proceed with what succeeded.
type MediaFetcher interface {
	Fetch(ctx context.Context, urls []string) []MediaAttachment
}

// Package spot provides the melt-price reference source. Values come
// from an external feed, refreshed periodically, with hardcoded
// fallbacks so the pipeline keeps bounding decisions when the feed is
// down.
package spot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// Feed is a cached spot-price source implementing core.PriceSource.
type Feed struct {
	client  *http.Client
	feedURL string
	logger  *zap.Logger

	mu       sync.RWMutex
	perGram  map[string]float64
	lastGood time.Time

	stopCh chan struct{}
}

// NewFeed creates a new spot price feed seeded with fallback values.
// When feedURL is empty the fallbacks are used for the process lifetime.
func NewFeed(cfg config.SpotConfig, logger *zap.Logger) *Feed {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil

	f := &Feed{
		client:  rc.StandardClient(),
		feedURL: cfg.FeedURL,
		logger:  logger,
		perGram: map[string]float64{
			"gold":   cfg.FallbackGoldGram,
			"silver": cfg.FallbackSilverGram,
		},
		stopCh: make(chan struct{}),
	}

	if cfg.FeedURL != "" {
		if err := f.refresh(context.Background()); err != nil {
			logger.Warn("Initial spot refresh failed, using fallbacks", zap.Error(err))
		}
		go f.refreshLoop(cfg.RefreshInterval)
	}
	return f
}

// ReferenceValue returns the per-gram spot price for the category.
func (f *Feed) ReferenceValue(ctx context.Context, category, query string) (float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if v, ok := f.perGram[category]; ok && v > 0 {
		return v, nil
	}
	return 0, fmt.Errorf("category %q: %w", category, core.ErrReferenceNotFound)
}

// SpotPerGram is the synchronous variant used by the rules engine;
// it never blocks on the feed. Returns 0 for unknown categories.
func (f *Feed) SpotPerGram(category string) float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.perGram[category]
}

func (f *Feed) refreshLoop(interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := f.refresh(context.Background()); err != nil {
				f.logger.Warn("Spot refresh failed, keeping last values", zap.Error(err))
			}
		case <-f.stopCh:
			return
		}
	}
}

// refresh pulls the feed and updates per-gram prices. The feed reports
// troy-ounce prices under gold.price / silver.price.
func (f *Feed) refresh(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spot feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	const gramsPerTroyOunce = 31.1035
	gold := gjson.GetBytes(body, "gold.price").Float()
	silver := gjson.GetBytes(body, "silver.price").Float()
	if gold <= 0 && silver <= 0 {
		return fmt.Errorf("spot feed carried no usable prices")
	}

	f.mu.Lock()
	if gold > 0 {
		f.perGram["gold"] = gold / gramsPerTroyOunce
	}
	if silver > 0 {
		f.perGram["silver"] = silver / gramsPerTroyOunce
	}
	f.lastGood = time.Now()
	f.mu.Unlock()

	f.logger.Info("Refreshed spot prices",
		zap.Float64("gold_gram", f.SpotPerGram("gold")),
		zap.Float64("silver_gram", f.SpotPerGram("silver")))
	return nil
}

// Stop stops the background refresh loop.
func (f *Feed) Stop() {
	close(f.stopCh)
}

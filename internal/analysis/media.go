package analysis

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

const maxImageBytes = 8 << 20

// MediaFetcher downloads listing images concurrently with a bounded
// fan-out. Failed fetches are dropped; analysis proceeds with whatever
// succeeded.
type MediaFetcher struct {
	client        *http.Client
	maxConcurrent int
	perFetch      time.Duration
	maxImages     int
	logger        *zap.Logger
}

// NewMediaFetcher creates a new media fetcher
func NewMediaFetcher(cfg config.MediaConfig, logger *zap.Logger) *MediaFetcher {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 1
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 500 * time.Millisecond
	rc.Logger = nil

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &MediaFetcher{
		client:        rc.StandardClient(),
		maxConcurrent: maxConcurrent,
		perFetch:      cfg.PerFetchTimeout,
		maxImages:     cfg.MaxImages,
		logger:        logger,
	}
}

// Fetch retrieves up to maxImages of the given URLs.
func (f *MediaFetcher) Fetch(ctx context.Context, urls []string) []core.MediaAttachment {
	if len(urls) == 0 {
		return nil
	}
	if f.maxImages > 0 && len(urls) > f.maxImages {
		urls = urls[:f.maxImages]
	}

	var mu sync.Mutex
	fetched := make([]core.MediaAttachment, 0, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.maxConcurrent)
	for _, url := range urls {
		url := url
		g.Go(func() error {
			att, err := f.fetchOne(gctx, url)
			if err != nil {
				f.logger.Debug("Image fetch failed", zap.String("url", url), zap.Error(err))
				return nil // partial failure tolerated
			}
			mu.Lock()
			fetched = append(fetched, att)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	f.logger.Debug("Fetched listing media",
		zap.Int("requested", len(urls)),
		zap.Int("fetched", len(fetched)))
	return fetched
}

func (f *MediaFetcher) fetchOne(ctx context.Context, url string) (core.MediaAttachment, error) {
	perFetch := f.perFetch
	if perFetch <= 0 {
		perFetch = 5 * time.Second
	}
	fetchCtx, cancel := context.WithTimeout(ctx, perFetch)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return core.MediaAttachment{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return core.MediaAttachment{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.MediaAttachment{}, io.ErrUnexpectedEOF
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return core.MediaAttachment{}, err
	}

	mediaType := resp.Header.Get("Content-Type")
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = "image/jpeg"
	}

	return core.MediaAttachment{URL: url, Data: data, MediaType: mediaType}, nil
}

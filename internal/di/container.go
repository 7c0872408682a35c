package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/httpserver"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/spot"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/analysis"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/factory"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/logging"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/ports"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/rules"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/spam"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/valuation"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return nil, err
	}

	// Register analysis client
	if err := container.Provide(func(f *factory.LLMFactory) (core.AnalysisClient, error) {
		return f.CreateAnalysisClient()
	}); err != nil {
		return nil, err
	}

	// Register decision cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.DecisionCache, error) {
		return f.CreateDecisionCache()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register blocklist and spam tracker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*spam.Blocklist, error) {
		return spam.NewBlocklist(cfg.GetSpam().BlocklistPath, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(b *spam.Blocklist) core.BlocklistStore {
		return b
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, blocklist core.BlocklistStore, logger *zap.Logger) core.SpamFilter {
		spamCfg := cfg.GetSpam()
		return spam.NewTracker(blocklist, spamCfg.Window, spamCfg.Threshold, spamCfg.DedupWindow, logger)
	}); err != nil {
		return nil, err
	}

	// Register spot price feed
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *spot.Feed {
		return spot.NewFeed(cfg.GetSpot(), logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *spot.Feed) core.PriceSource {
		return f
	}); err != nil {
		return nil, err
	}

	// Register rules engine
	if err := container.Provide(func(cfg *config.Config, feed *spot.Feed, logger *zap.Logger) core.RuleEvaluator {
		engine := rules.NewEngine(cfg.GetValuation().PriceSanityMultiple, logger)
		return rules.NewPricedEngine(engine, feed)
	}); err != nil {
		return nil, err
	}

	// Register validator, media fetcher and tier-2 budget
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *valuation.Validator {
		return valuation.NewValidator(cfg.GetValuation(), logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.MediaFetcher {
		return analysis.NewMediaFetcher(cfg.GetMedia(), logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) *analysis.Budget {
		return analysis.NewBudget(cfg.GetAnalysis().Tier2HourlyBudget)
	}); err != nil {
		return nil, err
	}

	// Register analysis coordinator
	if err := container.Provide(func(
		client core.AnalysisClient,
		media core.MediaFetcher,
		prices core.PriceSource,
		validator *valuation.Validator,
		budget *analysis.Budget,
		cfg *config.Config,
		logger *zap.Logger,
	) core.Analyzer {
		return analysis.NewCoordinator(client, media, prices, validator, budget, cfg.GetAnalysis(), logger)
	}); err != nil {
		return nil, err
	}

	// Register renderer
	if err := container.Provide(httpserver.NewHTMLRenderer); err != nil {
		return nil, err
	}
	if err := container.Provide(func(r *httpserver.HTMLRenderer) core.Renderer {
		return r
	}); err != nil {
		return nil, err
	}

	// Register evaluator service
	if err := container.Provide(core.NewEvaluatorService); err != nil {
		return nil, err
	}

	// Register listing server
	if err := container.Provide(func(f *factory.ServerFactory) (ports.ListingServer, error) {
		return f.CreateListingServer()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/httpserver"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/spot"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/analysis"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/factory"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/logging"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/rules"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/spam"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/valuation"
)

// CLIFlags contains all command line flags for the one-shot evaluator
type CLIFlags struct {
	// Provider flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64

	// Bedrock flags
	BedrockRegion     string
	BedrockTier1Model string
	BedrockTier2Model string

	// Gemini flags
	GeminiAPIKey     string
	GeminiTier1Model string
	GeminiTier2Model string

	// OpenAI flags
	OpenAIAPIKey     string
	OpenAITier1Model string
	OpenAITier2Model string

	// Input flags
	InputFile  string
	HTMLOutput bool
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.Provider, "provider", "openai", "Analysis provider (bedrock, gemini, openai)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for provider response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for generation")

	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockTier1Model, "bedrock-tier1-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock tier 1 model ID")
	flag.StringVar(&flags.BedrockTier2Model, "bedrock-tier2-model", "anthropic.claude-3-sonnet-20240229-v1:0", "Bedrock tier 2 model ID")

	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiTier1Model, "gemini-tier1-model", "gemini-1.5-flash", "Gemini tier 1 model")
	flag.StringVar(&flags.GeminiTier2Model, "gemini-tier2-model", "gemini-1.5-pro", "Gemini tier 2 model")

	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAITier1Model, "openai-tier1-model", "gpt-4o-mini", "OpenAI tier 1 model")
	flag.StringVar(&flags.OpenAITier2Model, "openai-tier2-model", "gpt-4o", "OpenAI tier 2 model")

	flag.StringVar(&flags.InputFile, "file", "", "Input listing JSON file (use stdin if not specified)")
	flag.BoolVar(&flags.HTMLOutput, "html", false, "Emit the HTML verdict document instead of JSON")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection
// container for the one-shot evaluator.
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register analysis client
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.LLMFactory) (core.AnalysisClient, error) {
		return f.CreateAnalysisClient()
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

	// Register analysis coordinator
	if err := container.Provide(func(
		client core.AnalysisClient,
		prices core.PriceSource,
		cfg *config.Config,
		logger *zap.Logger,
	) core.Analyzer {
		validator := valuation.NewValidator(cfg.GetValuation(), logger)
		media := analysis.NewMediaFetcher(cfg.GetMedia(), logger)
		budget := analysis.NewBudget(cfg.GetAnalysis().Tier2HourlyBudget)
		return analysis.NewCoordinator(client, media, prices, validator, budget, cfg.GetAnalysis(), logger)
	}); err != nil {
		return nil, err
	}

	// Register renderer
	if err := container.Provide(httpserver.NewHTMLRenderer); err != nil {
		return nil, err
	}

	// Register evaluator service with no cache and an ephemeral blocklist
	if err := container.Provide(func(
		cfg *config.Config,
		ruleEvaluator core.RuleEvaluator,
		analyzer core.Analyzer,
		renderer *httpserver.HTMLRenderer,
		logger *zap.Logger,
	) (*core.EvaluatorService, error) {
		blocklist, err := spam.NewBlocklist(":memory:", logger)
		if err != nil {
			return nil, err
		}
		spamCfg := cfg.GetSpam()
		tracker := spam.NewTracker(blocklist, spamCfg.Window, spamCfg.Threshold, spamCfg.DedupWindow, logger)
		return core.NewEvaluatorService(tracker, nil, ruleEvaluator, analyzer, renderer, logger, false), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("analysis.provider", flags.Provider)

	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.tier1_model", flags.BedrockTier1Model)
		v.Set("bedrock.tier2_model", flags.BedrockTier2Model)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.tier1_model", flags.GeminiTier1Model)
		v.Set("gemini.tier2_model", flags.GeminiTier2Model)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.tier1_model", flags.OpenAITier1Model)
		v.Set("openai.tier2_model", flags.OpenAITier2Model)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
	}

	return config.NewFromViper(v)
}

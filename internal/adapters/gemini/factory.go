package gemini

import (
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateClient creates a new GeminiClient
func (f *Factory) CreateClient() (core.AnalysisClient, error) {
	providerCfg := f.cfg.GetProvider("gemini")
	return NewGeminiClient(
		providerCfg.APIKey,
		providerCfg.Tier1Model,
		providerCfg.Tier2Model,
		providerCfg.MaxTokens,
		providerCfg.Temperature,
		providerCfg.TopP,
		f.logger,
	)
}

package openai

import (
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// Factory creates new instances of OpenAIClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAIClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateClient creates a new OpenAIClient
func (f *Factory) CreateClient() (core.AnalysisClient, error) {
	providerCfg := f.cfg.GetProvider("openai")
	client := openai.NewClient(providerCfg.APIKey)

	return NewOpenAIClient(
		client,
		providerCfg.Tier1Model,
		providerCfg.Tier2Model,
		providerCfg.MaxTokens,
		providerCfg.Temperature,
		providerCfg.TopP,
		f.logger,
	), nil
}

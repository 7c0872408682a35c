package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/bedrock"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/gemini"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/openai"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// LLMFactory creates analysis clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{cfg: cfg, logger: logger}
}

// CreateAnalysisClient creates a new analysis client based on the configuration
func (f *LLMFactory) CreateAnalysisClient() (core.AnalysisClient, error) {
	provider := f.cfg.GetAnalysis().Provider

	switch provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateClient()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateClient()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateClient()
	default:
		return nil, fmt.Errorf("unsupported analysis provider: %s", provider)
	}
}

package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/config"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// Factory creates Bedrock clients
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateClient creates a new BedrockClient
func (f *Factory) CreateClient() (core.AnalysisClient, error) {
	providerCfg := f.cfg.GetProvider("bedrock")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(providerCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)

	return NewBedrockClient(
		client,
		providerCfg.Tier1Model,
		providerCfg.Tier2Model,
		providerCfg.MaxTokens,
		providerCfg.Temperature,
		providerCfg.TopP,
		f.logger,
	), nil
}

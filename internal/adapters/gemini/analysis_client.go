package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/utils"
)

// GeminiClient is an implementation of the AnalysisClient interface
// using Google Gemini.
type GeminiClient struct {
	client     *genai.Client
	tier1Model *genai.GenerativeModel
	tier2Model *genai.GenerativeModel
	tier1Name  string
	tier2Name  string
	logger     *zap.Logger
}

// NewGeminiClient creates a new Gemini analysis client
func NewGeminiClient(
	apiKey string,
	tier1Name string,
	tier2Name string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	configure := func(name string) *genai.GenerativeModel {
		model := client.GenerativeModel(name)
		model.SetTemperature(temperature)
		model.SetTopP(topP)
		model.SetMaxOutputTokens(int32(maxTokens))
		return model
	}

	return &GeminiClient{
		client:     client,
		tier1Model: configure(tier1Name),
		tier2Model: configure(tier2Name),
		tier1Name:  tier1Name,
		tier2Name:  tier2Name,
		logger:     logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Analyze performs one escalation call against Gemini.
func (c *GeminiClient) Analyze(ctx context.Context, req *core.AnalysisRequest) (*core.TierResult, error) {
	model, name := c.tier1Model, c.tier1Name
	if req.Tier == core.TierVerify {
		model, name = c.tier2Model, c.tier2Name
	}

	parts := []genai.Part{genai.Text(utils.BuildPrompt(req))}
	for _, m := range req.Media {
		format := strings.TrimPrefix(m.MediaType, "image/")
		parts = append(parts, genai.ImageData(format, m.Data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("gemini call: %w", core.ErrProviderTimeout)
		}
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini: %w", core.ErrProviderMalformed)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	result, err := utils.ParseTierResult(text.String(), req.Tier, name)
	if err != nil {
		return nil, err
	}
	result.ProcessingID = uuid.NewString()

	c.logger.Debug("Gemini analysis complete",
		zap.String("model", name),
		zap.Int("tier", int(req.Tier)),
		zap.String("recommendation", string(result.Recommendation)))
	return result, nil
}

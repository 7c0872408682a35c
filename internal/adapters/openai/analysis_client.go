package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/utils"
)

// OpenAIClient is an implementation of the AnalysisClient interface
// using OpenAI chat completions with vision input.
type OpenAIClient struct {
	client      *openai.Client
	tier1Model  string
	tier2Model  string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewOpenAIClient creates a new OpenAI analysis client
func NewOpenAIClient(
	client *openai.Client,
	tier1Model string,
	tier2Model string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *OpenAIClient {
	return &OpenAIClient{
		client:      client,
		tier1Model:  tier1Model,
		tier2Model:  tier2Model,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// Analyze performs one escalation call against OpenAI.
func (c *OpenAIClient) Analyze(ctx context.Context, req *core.AnalysisRequest) (*core.TierResult, error) {
	model := c.tier1Model
	if req.Tier == core.TierVerify {
		model = c.tier2Model
	}

	prompt := utils.BuildPrompt(req)

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt},
	}
	for _, m := range req.Media {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", m.MediaType, base64.StdEncoding.EncodeToString(m.Data)),
				Detail: openai.ImageURLDetailLow,
			},
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a resale arbitrage evaluator. Respond only with JSON.",
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("openai call: %w", core.ErrProviderTimeout)
		}
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI: %w", core.ErrProviderMalformed)
	}

	result, err := utils.ParseTierResult(resp.Choices[0].Message.Content, req.Tier, model)
	if err != nil {
		return nil, err
	}
	result.ProcessingID = resp.ID
	if result.ProcessingID == "" {
		result.ProcessingID = uuid.NewString()
	}

	c.logger.Debug("OpenAI analysis complete",
		zap.String("model", model),
		zap.Int("tier", int(req.Tier)),
		zap.String("recommendation", string(result.Recommendation)))
	return result, nil
}

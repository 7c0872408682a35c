package bedrock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/utils"
)

// BedrockClient is an implementation of the AnalysisClient interface
// using Amazon Bedrock.
type BedrockClient struct {
	client      *bedrockruntime.Client
	tier1Model  string
	tier2Model  string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewBedrockClient creates a new Bedrock analysis client
func NewBedrockClient(
	client *bedrockruntime.Client,
	tier1Model string,
	tier2Model string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *BedrockClient {
	return &BedrockClient{
		client:      client,
		tier1Model:  tier1Model,
		tier2Model:  tier2Model,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// Analyze performs one escalation call against Bedrock.
func (c *BedrockClient) Analyze(ctx context.Context, req *core.AnalysisRequest) (*core.TierResult, error) {
	modelID := c.tier1Model
	if req.Tier == core.TierVerify {
		modelID = c.tier2Model
	}

	prompt := utils.BuildPrompt(req)

	var payload []byte
	var err error

	if isAnthropicModel(modelID) {
		// Anthropic messages API, with images inlined when present
		content := []map[string]interface{}{}
		for _, m := range req.Media {
			content = append(content, map[string]interface{}{
				"type": "image",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": m.MediaType,
					"data":       base64.StdEncoding.EncodeToString(m.Data),
				},
			})
		}
		content = append(content, map[string]interface{}{
			"type": "text",
			"text": prompt,
		})
		payload, err = json.Marshal(map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        c.maxTokens,
			"temperature":       c.temperature,
			"top_p":             c.topP,
			"messages": []map[string]interface{}{
				{"role": "user", "content": content},
			},
		})
	} else if isAmazonTitanModel(modelID) {
		// Amazon Titan models are text-only
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		// Default to a generic format
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("bedrock call: %w", core.ErrProviderTimeout)
		}
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := extractResponseText(modelID, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, core.ErrProviderMalformed)
	}

	result, err := utils.ParseTierResult(responseText, req.Tier, modelID)
	if err != nil {
		return nil, err
	}
	result.ProcessingID = uuid.NewString()

	c.logger.Debug("Bedrock analysis complete",
		zap.String("model", modelID),
		zap.Int("tier", int(req.Tier)),
		zap.String("recommendation", string(result.Recommendation)))
	return result, nil
}

func extractResponseText(modelID string, body []byte) (string, error) {
	if isAnthropicModel(modelID) {
		var claudeResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to parse Claude response: %v", err)
		}
		var sb strings.Builder
		for _, block := range claudeResp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return "", errors.New("empty Claude response")
		}
		return sb.String(), nil
	}

	if isAmazonTitanModel(modelID) {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to parse Titan response: %v", err)
		}
		if len(titanResp.Results) == 0 {
			return "", errors.New("empty Titan response")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Completion string `json:"completion"`
		Generation string `json:"generation"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to parse model response: %v", err)
	}
	if genericResp.Completion != "" {
		return genericResp.Completion, nil
	}
	if genericResp.Generation != "" {
		return genericResp.Generation, nil
	}
	return "", errors.New("no text in model response")
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func isAnthropicModel(modelID string) bool {
	return strings.HasPrefix(modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func isAmazonTitanModel(modelID string) bool {
	return strings.HasPrefix(modelID, "amazon.titan")
}

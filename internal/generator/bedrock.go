// Package generator implements wellness.MessageGenerator on hosted models.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	awserrors "github.com/mikecbrant/glowcycle/internal/awssdk/errors"
	"github.com/mikecbrant/glowcycle/internal/utils/logging"
	"github.com/mikecbrant/glowcycle/internal/wellness"
)

const (
	DefaultBedrockModel = "anthropic.claude-3-haiku-20240307-v1:0"
	anthropicVersion    = "bedrock-2023-05-31"
	DefaultTemperature  = 0.3
)

// BedrockClient is the subset of the Bedrock runtime API the generator calls.
type BedrockClient interface {
	InvokeModel(context.Context, *bedrockruntime.InvokeModelInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// NewBedrockClient builds a Bedrock runtime client from cfg.
func NewBedrockClient(cfg aws.Config) *bedrockruntime.Client {
	return bedrockruntime.NewFromConfig(cfg)
}

// Bedrock generates messages with an Anthropic model hosted on Bedrock.
type Bedrock struct {
	client      BedrockClient
	model       string
	temperature float64
	logger      logging.Logger
}

var _ wellness.MessageGenerator = (*Bedrock)(nil)

// NewBedrock returns a Bedrock generator; empty model and zero temperature
// select the defaults.
func NewBedrock(client BedrockClient, model string, temperature float64, logger logging.Logger) *Bedrock {
	if model == "" {
		model = DefaultBedrockModel
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Bedrock{client: client, model: model, temperature: temperature, logger: logging.OrNop(logger)}
}

// Name reports the message source.
func (b *Bedrock) Name() string { return "bedrock_ai" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Generate invokes the model once; retries are left to the SDK retryer.
func (b *Bedrock) Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxOutputTokens,
		Temperature:      b.temperature,
		Messages:         []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: encode request: %w", err)
	}
	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		err = awserrors.Classify(err)
		b.logger.Warn("bedrock.invoke.error", logging.Fields{"model": b.model, "category": awserrors.Category(err)})
		return "", err
	}
	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("bedrock: decode response: %w", err)
	}
	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "" || c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", errors.New("bedrock: response has no text content")
	}
	b.logger.Debug("bedrock.invoke.ok", logging.Fields{"model": b.model, "stopReason": resp.StopReason})
	return strings.TrimSpace(text.String()), nil
}

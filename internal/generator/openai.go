package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/mikecbrant/glowcycle/internal/utils/logging"
	"github.com/mikecbrant/glowcycle/internal/wellness"
)

// ChatClient is the subset of the go-openai client the generator calls.
type ChatClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig configures an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

const (
	DefaultOpenAIModel = openai.GPT4oMini
	defaultTimeout     = 30 * time.Second
)

// NewOpenAIClient builds a go-openai client for cfg.
func NewOpenAIClient(cfg OpenAIConfig) *openai.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	c.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(c)
}

// OpenAI generates messages through a chat-completions endpoint.
type OpenAI struct {
	client      ChatClient
	model       string
	temperature float32
	logger      logging.Logger
}

var _ wellness.MessageGenerator = (*OpenAI)(nil)

// NewOpenAI returns an OpenAI generator over client.
func NewOpenAI(client ChatClient, cfg OpenAIConfig, logger logging.Logger) *OpenAI {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}
	return &OpenAI{client: client, model: model, temperature: temp, logger: logging.OrNop(logger)}
}

// Name reports the message source.
func (o *OpenAI) Name() string { return "openai" }

// Generate sends prompt as a single user message.
func (o *OpenAI) Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   maxOutputTokens,
		Temperature: o.temperature,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			o.logger.Warn("openai.chat.error", logging.Fields{"model": o.model, "status": apiErr.HTTPStatusCode})
		}
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("openai: response has no text content")
	}
	o.logger.Debug("openai.chat.ok", logging.Fields{"model": o.model, "tokens": resp.Usage.TotalTokens})
	return text, nil
}

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

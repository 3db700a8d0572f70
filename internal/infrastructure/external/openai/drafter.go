package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyjia/ai-collections/internal/application/port"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the completion carries no choices
var ErrEmptyResponse = errors.New("no response from OpenAI")

// Config holds OpenAI client settings shared by every tier
type Config struct {
	APIKey      string
	BaseURL     string // optional, for proxies and compatible gateways
	Temperature float32
	MaxTokens   int
}

// Drafter implements port.DraftingCapability with the chat completions API.
// The model comes from each request so one Drafter can serve every tier.
type Drafter struct {
	client      *openai.Client
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewDrafter creates a new OpenAI drafter
func NewDrafter(cfg Config, logger *zap.Logger) *Drafter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Drafter{
		client:      openai.NewClientWithConfig(clientCfg),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// Draft requests a JSON object recommendation. The content is returned unparsed.
func (d *Drafter) Draft(ctx context.Context, req port.DraftRequest) (*port.DraftResponse, error) {
	d.logger.Debug("Requesting collection draft", zap.String("model", req.Model))

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: d.temperature,
		MaxTokens:   d.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		d.logger.Error("OpenAI API call failed", zap.String("model", req.Model), zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	d.logger.Debug("Draft received",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return &port.DraftResponse{
		Model:   resp.Model,
		Content: resp.Choices[0].Message.Content,
	}, nil
}

var _ port.DraftingCapability = (*Drafter)(nil)

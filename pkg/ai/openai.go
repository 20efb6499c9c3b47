package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

const defaultOpenAIModel = "gpt-4o-mini"

// chatService defines minimal interface for chat completions.
type chatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	provider       string
	chat           chatService
	model          string
	responseFormat string
	policy         callPolicy
}

// NewOpenAIClient creates a client for api.openai.com or cfg.BaseURL
func NewOpenAIClient(cfg *config.LLMConfig, logger *zap.Logger) *OpenAIClient {
	return newOpenAICompatible("openai", cfg, defaultOpenAIModel, cfg.BaseURL, logger)
}

func newOpenAICompatible(provider string, cfg *config.LLMConfig, defaultModel, baseURL string, logger *zap.Logger) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// retries are driven by callPolicy
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAIClient{
		provider:       provider,
		chat:           &client.Chat.Completions,
		model:          model,
		responseFormat: cfg.ResponseFormat,
		policy:         newCallPolicy(cfg, provider, logger),
	}
}

// Provider returns the provider name
func (c *OpenAIClient) Provider() string {
	return c.provider
}

// Complete sends the prompts and returns the first choice content
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		ResponseFormat: c.responseFormatFor(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	params.Temperature = openai.Float(req.Temperature)

	var content string
	err := c.policy.do(ctx, func(ctx context.Context) error {
		resp, err := c.chat.New(ctx, params)
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			return backoff.Permanent(ErrEmptyResponse)
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *OpenAIClient) responseFormatFor(req CompletionRequest) openai.ChatCompletionNewParamsResponseFormatUnion {
	if c.responseFormat == "json_schema" && req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: req.Schema.JSONSchema(),
					Strict: openai.Bool(false),
				},
			},
		}
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
	}
}

// classifyOpenAIError marks client errors as permanent
func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if jobcontext.IsRetryableStatus(apiErr.StatusCode) {
			return &retryableError{err: err}
		}
		return backoff.Permanent(err)
	}
	return err
}

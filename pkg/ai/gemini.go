package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

const defaultGeminiModel = "gemini-1.5-flash"

// contentGenerator is the part of *genai.GenerativeModel Complete uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient calls Google's Gemini models
type GeminiClient struct {
	client         *genai.Client
	modelName      string
	responseFormat string
	policy         callPolicy
	generator      func(req CompletionRequest) contentGenerator
}

// NewGeminiClient creates a Gemini client
func NewGeminiClient(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	g := &GeminiClient{
		client:         client,
		modelName:      modelName,
		responseFormat: cfg.ResponseFormat,
		policy:         newCallPolicy(cfg, "gemini", logger),
	}
	g.generator = func(req CompletionRequest) contentGenerator {
		model := client.GenerativeModel(g.modelName)
		g.configure(model, req)
		return model
	}
	return g, nil
}

// Provider returns the provider name
func (g *GeminiClient) Provider() string {
	return "gemini"
}

// Complete sends the prompts and concatenates the text parts of the first candidate
func (g *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := g.generator(req)

	var content string
	err := g.policy.do(ctx, func(ctx context.Context) error {
		res, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
		if err != nil {
			return classifyGeminiError(err)
		}
		text := candidateText(res)
		if strings.TrimSpace(text) == "" {
			return backoff.Permanent(ErrEmptyResponse)
		}
		content = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// configure applies the request's prompt and generation settings to model
func (g *GeminiClient) configure(model *genai.GenerativeModel, req CompletionRequest) {
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	model.ResponseMIMEType = "application/json"
	if g.responseFormat == "json_schema" && req.Schema != nil {
		model.ResponseSchema = toGenaiSchema(req.Schema)
	}
}

// Close releases the underlying connection
func (g *GeminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func candidateText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if jobcontext.IsRetryableStatus(apiErr.Code) {
			return &retryableError{err: err}
		}
		return backoff.Permanent(err)
	}
	return err
}

var genaiTypes = map[SchemaType]genai.Type{
	TypeObject:  genai.TypeObject,
	TypeArray:   genai.TypeArray,
	TypeString:  genai.TypeString,
	TypeNumber:  genai.TypeNumber,
	TypeInteger: genai.TypeInteger,
	TypeBoolean: genai.TypeBoolean,
}

// toGenaiSchema converts s. Gemini has no numeric bounds, so they move
// into the description.
func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiTypes[s.Type],
		Description: s.Description,
		Enum:        s.Enum,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Enum) > 0 {
		out.Format = "enum"
	}
	if s.Minimum != nil && s.Maximum != nil {
		bounds := fmt.Sprintf("between %g and %g", *s.Minimum, *s.Maximum)
		if out.Description == "" {
			out.Description = bounds
		} else {
			out.Description += " (" + bounds + ")"
		}
	}
	if s.Type == TypeObject {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toGenaiSchema(p)
		}
		out.Required = append([]string(nil), s.Order...)
	}
	return out
}

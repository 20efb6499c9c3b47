package ai

import (
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

const (
	groqBaseURL      = "https://api.groq.com/openai/v1/"
	defaultGroqModel = "llama-3.3-70b-versatile"
)

// NewGroqClient creates a client for Groq's OpenAI-compatible endpoint
func NewGroqClient(cfg *config.LLMConfig, logger *zap.Logger) *OpenAIClient {
	base := cfg.BaseURL
	if base == "" {
		base = groqBaseURL
	}
	return newOpenAICompatible("groq", cfg, defaultGroqModel, base, logger)
}

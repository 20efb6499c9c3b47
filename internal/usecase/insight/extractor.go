// Package insight turns a meeting transcript into structured MeetingInsights
package insight

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/stage"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Extractor runs the insight extraction stage. A nil Completer selects the
// mock generator.
type Extractor struct {
	llm         ai.Completer
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// NewExtractor creates an extractor. cfg may be nil, in which case the
// defaults of 2000 tokens and temperature 0.3 apply.
func NewExtractor(llm ai.Completer, cfg *config.LLMConfig, logger *zap.Logger) *Extractor {
	e := &Extractor{llm: llm, maxTokens: 2000, temperature: 0.3, logger: logger}
	if cfg != nil {
		if cfg.MaxTokens > 0 {
			e.maxTokens = cfg.MaxTokens
		}
		e.temperature = cfg.Temperature
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Extract never fails: every error path yields a degraded outcome carrying
// the mock insights or a partially recovered value.
func (e *Extractor) Extract(ctx context.Context, transcript string, mc MeetingContext) (out stage.Outcome[*entities.MeetingInsights]) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("❌ Insight extraction panicked, using mock insights", zap.Any("panic", r))
			out = stage.Degraded(Mock(), fmt.Sprintf("%s: %v", stage.ReasonPanic, r))
		}
	}()

	if e.llm == nil {
		e.logger.Info("⚠️ LLM not configured, using mock insights")
		return stage.Degraded(Mock(), stage.ReasonNoCredential)
	}

	e.logger.Info("🧠 Starting insight extraction",
		zap.String("provider", e.llm.Provider()),
		zap.Int("transcript_length", len(transcript)),
		zap.Int("segments", len(mc.Speakers)),
	)

	raw, err := e.llm.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: SystemPrompt(mc),
		UserPrompt:   UserPrompt(transcript, mc.Speakers),
		SchemaName:   SchemaName,
		Schema:       Schema,
		MaxTokens:    e.maxTokens,
		Temperature:  e.temperature,
	})
	if err != nil {
		e.logger.Warn("⚠️ Insight extraction call failed, using mock insights", zap.Error(err))
		return stage.Degraded(Mock(), fmt.Sprintf("%s: %v", stage.ReasonLLMFailed, err))
	}

	out = Normalize(raw)
	if out.Degraded {
		e.logger.Warn("⚠️ Insight response degraded",
			zap.String("reason", out.Reason),
			zap.String("raw_response", raw[:min(300, len(raw))]),
		)
	} else {
		e.logger.Info("✅ Insights extracted",
			zap.Int("advice_count", len(out.Value.AdviceGiven)),
			zap.Float64("confidence", out.Value.Confidence),
		)
	}
	return out
}

// Package actionplan turns meeting insights into a concrete ActionPlan
package actionplan

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/stage"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Generator runs the action planning stage. A nil Completer selects the
// mock plan.
type Generator struct {
	llm         ai.Completer
	maxTokens   int
	temperature float64
	logger      *zap.Logger
	now         func() time.Time
}

// NewGenerator creates a generator; cfg and logger may be nil
func NewGenerator(llm ai.Completer, cfg *config.LLMConfig, logger *zap.Logger) *Generator {
	g := &Generator{llm: llm, maxTokens: 2000, temperature: 0.3, logger: logger, now: time.Now}
	if cfg != nil {
		if cfg.MaxTokens > 0 {
			g.maxTokens = cfg.MaxTokens
		}
		g.temperature = cfg.Temperature
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

// WithClock replaces the time source used for due dates
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Plan never fails and always returns at least one immediate action
func (g *Generator) Plan(ctx context.Context, insights *entities.MeetingInsights, uc UserContext) (out stage.Outcome[*entities.ActionPlan]) {
	n := NewNormalizer(insights, g.now())

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("❌ Action planning panicked, using mock plan", zap.Any("panic", r))
			out = stage.Degraded(n.mock(), fmt.Sprintf("%s: %v", stage.ReasonPanic, r))
		}
	}()

	if g.llm == nil {
		g.logger.Info("⚠️ LLM not configured, using mock action plan")
		return stage.Degraded(n.mock(), stage.ReasonNoCredential)
	}

	userPrompt, err := UserPrompt(insights, uc)
	if err != nil {
		g.logger.Warn("⚠️ Failed to build planning prompt, using mock action plan", zap.Error(err))
		return stage.Degraded(n.mock(), err.Error())
	}

	g.logger.Info("📋 Starting action plan generation",
		zap.String("provider", g.llm.Provider()),
		zap.String("user_id", uc.UserID),
	)

	raw, err := g.llm.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: SystemPrompt(),
		UserPrompt:   userPrompt,
		SchemaName:   SchemaName,
		Schema:       Schema,
		MaxTokens:    g.maxTokens,
		Temperature:  g.temperature,
	})
	if err != nil {
		g.logger.Warn("⚠️ Action plan call failed, using mock action plan", zap.Error(err))
		return stage.Degraded(n.mock(), fmt.Sprintf("%s: %v", stage.ReasonLLMFailed, err))
	}

	out = n.Normalize(raw)
	if out.Degraded {
		g.logger.Warn("⚠️ Action plan response degraded",
			zap.String("reason", out.Reason),
			zap.String("raw_response", raw[:min(300, len(raw))]),
		)
	} else {
		g.logger.Info("✅ Action plan generated",
			zap.Int("actions", len(out.Value.ImmediateActions)),
			zap.Int("habits", len(out.Value.HabitFormation)),
		)
	}
	return out
}

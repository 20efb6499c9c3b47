package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

// ErrEmptyResponse is returned when the model produced no content
var ErrEmptyResponse = errors.New("empty response from llm")

// CompletionRequest is a single system+user prompt exchange
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       *Schema // nil asks for free-form JSON
	MaxTokens    int
	Temperature  float64
}

// Completer sends one prompt to a language model and returns the raw text
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Provider() string
}

// NewCompleter builds the client selected by cfg.Provider.
// It returns nil when no API key is configured.
func NewCompleter(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (Completer, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg, logger), nil
	case "groq":
		return NewGroqClient(cfg, logger), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// callPolicy paces and retries model calls
type callPolicy struct {
	limiter         *rate.Limiter
	timeout         time.Duration
	maxElapsed      time.Duration
	initialInterval time.Duration
	logger          *zap.Logger
	provider        string
}

func newCallPolicy(cfg *config.LLMConfig, provider string, logger *zap.Logger) callPolicy {
	p := callPolicy{
		timeout:         cfg.RequestTimeout,
		maxElapsed:      cfg.MaxElapsedTime,
		initialInterval: 2 * time.Second,
		logger:          logger,
		provider:        provider,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// retryableError marks a failure the provider classified as transient
// from its status code
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// do runs op until it succeeds, returns a permanent error or the
// elapsed-time budget is spent
func (p callPolicy) do(ctx context.Context, op func(ctx context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.initialInterval
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = p.maxElapsed

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if p.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		}
		defer cancel()

		err := op(callCtx)
		if err == nil {
			return nil
		}
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return err
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		var transient *retryableError
		if !errors.As(err, &transient) && !jobcontext.IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		p.logger.Warn("⚠️ LLM call failed, retrying",
			zap.String("provider", p.provider),
			zap.String("stage", jobcontext.GetStage(ctx)),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}, backoff.WithContext(bo, ctx))
}

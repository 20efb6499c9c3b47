// Package stage names the pipeline stages and carries the real/degraded
// outcome of each one.
package stage

import "github.com/johnquangdev/meeting-insights/internal/domain/entities"

// Stage names recorded on failures and in logs
const (
	Transcription     = "transcription"
	InsightExtraction = "insight-extraction"
	ActionPlanning    = "action-planning"
	ActionPersistence = "action-persistence"
	Unknown           = "unknown"
)

// Reasons attached to degraded outcomes
const (
	ReasonNoCredential = "llm not configured"
	ReasonLLMFailed    = "llm call failed"
	ReasonUnparsable   = "unparsable response"
	ReasonSalvaged     = "salvaged from text"
	ReasonNoContent    = "no usable content in response"
	ReasonPanic        = "recovered from panic"
)

// Outcome is a stage result that is always usable. Degraded marks a value
// produced by a fallback path instead of the live service.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Real wraps a value produced by the live service
func Real[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degraded wraps a fallback value together with the reason it was used
func Degraded[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: reason}
}

// Mode maps the outcome onto the mode stored on the meeting
func (o Outcome[T]) Mode() entities.StageMode {
	if o.Degraded {
		return entities.StageModeDegraded
	}
	return entities.StageModeReal
}

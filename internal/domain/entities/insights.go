package entities

// Level is the shared low/medium/high scale used for impact, complexity,
// severity and priority.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Rank orders levels high first
func (l Level) Rank() int {
	switch l {
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	case LevelLow:
		return 1
	default:
		return 0
	}
}

// AdviceCategory groups advice by the area of growth it targets
type AdviceCategory string

const (
	AdviceCategoryCareer     AdviceCategory = "career"
	AdviceCategorySkills     AdviceCategory = "skills"
	AdviceCategoryLeadership AdviceCategory = "leadership"
	AdviceCategoryPersonal   AdviceCategory = "personal"
	AdviceCategoryNetworking AdviceCategory = "networking"
)

// BarrierType classifies what stands between advice and execution
type BarrierType string

const (
	BarrierTypeTime       BarrierType = "time"
	BarrierTypeResources  BarrierType = "resources"
	BarrierTypeSkills     BarrierType = "skills"
	BarrierTypeMotivation BarrierType = "motivation"
	BarrierTypeExternal   BarrierType = "external"
)

// MeetingInsights is the canonical structured output of insight extraction.
// JSON names follow the schema sent to the LLM.
type MeetingInsights struct {
	AdviceGiven            []AdviceItem            `json:"adviceGiven" validate:"dive"`
	BehavioralPatterns     []BehavioralPattern     `json:"behavioralPatterns" validate:"dive"`
	ImplementationBarriers []ImplementationBarrier `json:"implementationBarriers" validate:"dive"`
	SuccessMetrics         []SuccessMetric         `json:"successMetrics" validate:"dive"`
	EmotionalContext       EmotionalContext        `json:"emotionalContext"`
	PriorityRanking        []PriorityRank          `json:"priorityRanking" validate:"dive"`
	Confidence             float64                 `json:"confidence" validate:"gte=0,lte=1"`
}

// AdviceItem is one piece of advice given during the conversation
type AdviceItem struct {
	ID              string         `json:"id" validate:"required"`
	Title           string         `json:"title" validate:"required"`
	Description     string         `json:"description"`
	Category        AdviceCategory `json:"category" validate:"oneof=career skills leadership personal networking"`
	Impact          Level          `json:"impact" validate:"oneof=high medium low"`
	Complexity      Level          `json:"complexity" validate:"oneof=low medium high"`
	SupportingQuote string         `json:"supportingQuote"`
	Speaker         string         `json:"speaker"`
	Timestamp       float64        `json:"timestamp" validate:"gte=0"` // seconds into the recording
	Confidence      float64        `json:"confidence" validate:"gte=0,lte=1"`
}

// BehavioralPattern is a recurring behavior observed in the mentee
type BehavioralPattern struct {
	Pattern     string  `json:"pattern" validate:"required"`
	Description string  `json:"description"`
	Frequency   int     `json:"frequency" validate:"gte=0"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// ImplementationBarrier is an obstacle to acting on the advice
type ImplementationBarrier struct {
	Type        BarrierType `json:"type" validate:"oneof=time resources skills motivation external"`
	Description string      `json:"description" validate:"required"`
	Severity    Level       `json:"severity" validate:"oneof=low medium high"`
	Suggestions []string    `json:"suggestions"`
}

// SuccessMetric describes how progress will be measured
type SuccessMetric struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Measurement string `json:"measurement"`
	Timeline    string `json:"timeline"`
}

// EmotionalContext captures the mentee's state during the conversation
type EmotionalContext struct {
	Motivation float64  `json:"motivation" validate:"gte=0,lte=1"`
	Confidence float64  `json:"confidence" validate:"gte=0,lte=1"`
	Concerns   []string `json:"concerns"`
	Excitement float64  `json:"excitement" validate:"gte=0,lte=1"`
}

// PriorityRank orders advice items by expected payoff
type PriorityRank struct {
	ActionID           string  `json:"actionId" validate:"required"`
	Priority           int     `json:"priority" validate:"gte=1,lte=10"`
	Reasoning          string  `json:"reasoning"`
	SuccessProbability float64 `json:"successProbability" validate:"gte=0,lte=1"`
}

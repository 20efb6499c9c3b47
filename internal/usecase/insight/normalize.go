package insight

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/llmjson"
	"github.com/johnquangdev/meeting-insights/internal/usecase/stage"
	"github.com/johnquangdev/meeting-insights/pkg/validator"
)

const defaultConfidence = 0.7

var (
	wrapperKeys = []string{"insights", "analysis", "result", "data", "meetingInsights", "meeting_insights", "meeting_analysis"}
	adviceKeys  = []string{"adviceGiven", "advice_given", "advice", "insights", "recommendations", "suggestions", "actions"}

	patternKeys    = []string{"behavioralPatterns", "behavioral_patterns", "patterns"}
	barrierKeys    = []string{"implementationBarriers", "implementation_barriers", "barriers"}
	metricKeys     = []string{"successMetrics", "success_metrics", "metrics"}
	emotionKeys    = []string{"emotionalContext", "emotional_context", "emotions"}
	rankingKeys    = []string{"priorityRanking", "priority_ranking", "priorities"}
	confidenceKeys = []string{"confidence", "overallConfidence", "overall_confidence"}

	contentFragment = regexp.MustCompile(`"content":\s*"([^"]+)"`)
)

// Normalize maps raw model output onto MeetingInsights. Adapters are tried
// from highest to lowest fidelity: strict decode, shape coercion, text
// salvage and finally the mock. The result is always valid.
func Normalize(raw string) stage.Outcome[*entities.MeetingInsights] {
	if obj, ok := llmjson.ParseObject(raw); ok {
		if v, ok := decodeStrict(obj); ok {
			return stage.Real(v)
		}
		return coerce(obj)
	}
	if v, ok := salvage(raw); ok {
		return stage.Degraded(v, stage.ReasonSalvaged)
	}
	return stage.Degraded(Mock(), stage.ReasonUnparsable)
}

// decodeStrict accepts output that already matches the canonical schema
func decodeStrict(obj gjson.Result) (*entities.MeetingInsights, bool) {
	if !obj.Get("adviceGiven").IsArray() {
		return nil, false
	}
	var out entities.MeetingInsights
	if err := json.Unmarshal([]byte(obj.Raw), &out); err != nil {
		return nil, false
	}
	if len(out.AdviceGiven) == 0 || validator.Struct(&out) != nil {
		return nil, false
	}
	ensureSlices(&out)
	return &out, true
}

// coerce reshapes alternate spellings and wrappers into the canonical
// schema. Invalid entries are dropped; missing sections come from the mock.
func coerce(obj gjson.Result) stage.Outcome[*entities.MeetingInsights] {
	data := llmjson.Unwrap(obj, wrapperKeys...)
	mock := Mock()
	out := &entities.MeetingInsights{}

	degraded := false
	if arr, ok := llmjson.FirstArray(data, adviceKeys...); ok {
		for i, item := range arr.Array() {
			if advice, ok := coerceAdvice(item, i); ok && llmjson.Valid(&advice) {
				out.AdviceGiven = append(out.AdviceGiven, advice)
			}
		}
	}
	if len(out.AdviceGiven) == 0 {
		out.AdviceGiven = mock.AdviceGiven
		degraded = true
	}

	out.BehavioralPatterns = llmjson.Section(data, patternKeys, coercePattern, mock.BehavioralPatterns)
	out.ImplementationBarriers = llmjson.Section(data, barrierKeys, coerceBarrier, mock.ImplementationBarriers)
	out.SuccessMetrics = llmjson.Section(data, metricKeys, coerceMetric, mock.SuccessMetrics)
	out.PriorityRanking = llmjson.Section(data, rankingKeys, func(v gjson.Result, i int) (entities.PriorityRank, bool) {
		return coerceRank(v, i, out.AdviceGiven)
	}, mock.PriorityRanking)
	out.EmotionalContext = coerceEmotion(llmjson.First(data, emotionKeys...), mock.EmotionalContext)

	out.Confidence = defaultConfidence
	if c, ok := llmjson.Probability(llmjson.First(data, confidenceKeys...), defaultConfidence); ok {
		out.Confidence = c
	}

	ensureSlices(out)
	if err := validator.Struct(out); err != nil {
		return stage.Degraded(Mock(), fmt.Sprintf("%s: %v", stage.ReasonUnparsable, err))
	}
	if degraded {
		return stage.Degraded(out, stage.ReasonNoContent)
	}
	return stage.Real(out)
}

func coerceAdvice(v gjson.Result, i int) (entities.AdviceItem, bool) {
	if v.Type == gjson.String {
		text := strings.TrimSpace(v.String())
		if text == "" {
			return entities.AdviceItem{}, false
		}
		return entities.AdviceItem{
			ID:              fmt.Sprintf("extracted-%d", i+1),
			Title:           llmjson.Title(text),
			Description:     text,
			Category:        entities.AdviceCategoryPersonal,
			Impact:          entities.LevelMedium,
			Complexity:      entities.LevelMedium,
			SupportingQuote: text,
			Speaker:         "AI Analysis",
			Confidence:      defaultConfidence,
		}, true
	}
	if !v.IsObject() {
		return entities.AdviceItem{}, false
	}

	confidence, ok := llmjson.Probability(v.Get("confidence"), defaultConfidence)
	if !ok {
		return entities.AdviceItem{}, false
	}

	item := entities.AdviceItem{
		ID:              llmjson.String(v, "id", "adviceId", "advice_id"),
		Title:           llmjson.String(v, "title", "name", "heading"),
		Description:     llmjson.String(v, "description", "content", "details"),
		Category:        category(llmjson.String(v, "category", "area")),
		Impact:          llmjson.Level(llmjson.String(v, "impact"), entities.LevelMedium),
		Complexity:      llmjson.Level(llmjson.String(v, "complexity", "difficulty"), entities.LevelMedium),
		SupportingQuote: llmjson.String(v, "supportingQuote", "supporting_quote", "quote", "content"),
		Speaker:         llmjson.String(v, "speaker"),
		Timestamp:       llmjson.Seconds(v.Get("timestamp")),
		Confidence:      confidence,
	}
	if item.ID == "" {
		item.ID = fmt.Sprintf("extracted-%d", i+1)
	}
	if item.Title == "" {
		if item.Description == "" {
			return entities.AdviceItem{}, false
		}
		item.Title = llmjson.Title(item.Description)
	}
	if item.Description == "" {
		item.Description = item.Title
	}
	if item.Speaker == "" {
		item.Speaker = "AI Analysis"
	}
	return item, true
}

func coercePattern(v gjson.Result, _ int) (entities.BehavioralPattern, bool) {
	if v.Type == gjson.String {
		text := strings.TrimSpace(v.String())
		return entities.BehavioralPattern{Pattern: text, Description: text, Frequency: 1, Confidence: defaultConfidence}, text != ""
	}
	confidence, ok := llmjson.Probability(v.Get("confidence"), defaultConfidence)
	if !ok {
		return entities.BehavioralPattern{}, false
	}
	p := entities.BehavioralPattern{
		Pattern:     llmjson.String(v, "pattern", "name", "title"),
		Description: llmjson.String(v, "description", "details"),
		Frequency:   llmjson.Int(v.Get("frequency"), 1),
		Confidence:  confidence,
	}
	return p, p.Pattern != ""
}

func coerceBarrier(v gjson.Result, _ int) (entities.ImplementationBarrier, bool) {
	if v.Type == gjson.String {
		text := strings.TrimSpace(v.String())
		return entities.ImplementationBarrier{
			Type:        entities.BarrierTypeExternal,
			Description: text,
			Severity:    entities.LevelMedium,
			Suggestions: []string{},
		}, text != ""
	}
	b := entities.ImplementationBarrier{
		Type:        barrierType(llmjson.String(v, "type", "category")),
		Description: llmjson.String(v, "description", "barrier", "text"),
		Severity:    llmjson.Level(llmjson.String(v, "severity"), entities.LevelMedium),
		Suggestions: llmjson.Strings(llmjson.First(v, "suggestions", "solutions", "mitigations")),
	}
	return b, b.Description != ""
}

func coerceMetric(v gjson.Result, _ int) (entities.SuccessMetric, bool) {
	if v.Type == gjson.String {
		text := strings.TrimSpace(v.String())
		return entities.SuccessMetric{Name: text, Description: text}, text != ""
	}
	m := entities.SuccessMetric{
		Name:        llmjson.String(v, "name", "metric", "title"),
		Description: llmjson.String(v, "description"),
		Measurement: llmjson.String(v, "measurement", "method", "how"),
		Timeline:    llmjson.String(v, "timeline", "frequency"),
	}
	return m, m.Name != ""
}

func coerceRank(v gjson.Result, i int, advice []entities.AdviceItem) (entities.PriorityRank, bool) {
	if !v.IsObject() {
		return entities.PriorityRank{}, false
	}
	probability, ok := llmjson.Probability(llmjson.First(v, "successProbability", "success_probability"), defaultConfidence)
	if !ok {
		return entities.PriorityRank{}, false
	}
	r := entities.PriorityRank{
		ActionID:           llmjson.String(v, "actionId", "action_id", "adviceId", "advice_id", "id"),
		Priority:           priority(v.Get("priority")),
		Reasoning:          llmjson.String(v, "reasoning", "reason", "rationale"),
		SuccessProbability: probability,
	}
	if r.ActionID == "" && i < len(advice) {
		r.ActionID = advice[i].ID
	}
	return r, r.ActionID != ""
}

func coerceEmotion(v gjson.Result, def entities.EmotionalContext) entities.EmotionalContext {
	if !v.IsObject() {
		return def
	}
	out := def
	read := func(key string, dst *float64) {
		if f, ok := llmjson.Probability(v.Get(key), *dst); ok {
			*dst = f
		}
	}
	read("motivation", &out.Motivation)
	read("confidence", &out.Confidence)
	read("excitement", &out.Excitement)
	if concerns := v.Get("concerns"); llmjson.Present(concerns) {
		out.Concerns = llmjson.Strings(concerns)
	}
	return out
}

// priority reads a 1–10 rank; level words map onto the scale
func priority(v gjson.Result) int {
	if v.Type == gjson.String {
		switch llmjson.Level(v.String(), "") {
		case entities.LevelHigh:
			return 9
		case entities.LevelMedium:
			return 6
		case entities.LevelLow:
			return 3
		}
	}
	return llmjson.ClampInt(llmjson.Int(v, 5), 1, 10)
}

func category(s string) entities.AdviceCategory {
	switch c := entities.AdviceCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case entities.AdviceCategoryCareer, entities.AdviceCategorySkills, entities.AdviceCategoryLeadership,
		entities.AdviceCategoryPersonal, entities.AdviceCategoryNetworking:
		return c
	default:
		return entities.AdviceCategoryPersonal
	}
}

func barrierType(s string) entities.BarrierType {
	switch t := entities.BarrierType(strings.ToLower(strings.TrimSpace(s))); t {
	case entities.BarrierTypeTime, entities.BarrierTypeResources, entities.BarrierTypeSkills,
		entities.BarrierTypeMotivation, entities.BarrierTypeExternal:
		return t
	default:
		return entities.BarrierTypeExternal
	}
}

// salvage builds advice from quoted "content" fragments in unparsable text
func salvage(raw string) (*entities.MeetingInsights, bool) {
	fragments := llmjson.Fragments(raw, contentFragment)
	if len(fragments) == 0 {
		return nil, false
	}
	out := Mock()
	out.AdviceGiven = make([]entities.AdviceItem, 0, len(fragments))
	for i, text := range fragments {
		out.AdviceGiven = append(out.AdviceGiven, entities.AdviceItem{
			ID:              fmt.Sprintf("text-advice-%d", i+1),
			Title:           llmjson.Title(text),
			Description:     text,
			Category:        entities.AdviceCategoryPersonal,
			Impact:          entities.LevelMedium,
			Complexity:      entities.LevelMedium,
			SupportingQuote: text,
			Speaker:         "AI Analysis",
			Confidence:      0.8,
		})
	}
	out.Confidence = defaultConfidence
	return out, true
}

// ensureSlices replaces nil sections so the stored JSON carries empty lists
func ensureSlices(m *entities.MeetingInsights) {
	if m.AdviceGiven == nil {
		m.AdviceGiven = []entities.AdviceItem{}
	}
	if m.BehavioralPatterns == nil {
		m.BehavioralPatterns = []entities.BehavioralPattern{}
	}
	if m.ImplementationBarriers == nil {
		m.ImplementationBarriers = []entities.ImplementationBarrier{}
	}
	if m.SuccessMetrics == nil {
		m.SuccessMetrics = []entities.SuccessMetric{}
	}
	if m.PriorityRanking == nil {
		m.PriorityRanking = []entities.PriorityRank{}
	}
	if m.EmotionalContext.Concerns == nil {
		m.EmotionalContext.Concerns = []string{}
	}
	for i := range m.ImplementationBarriers {
		if m.ImplementationBarriers[i].Suggestions == nil {
			m.ImplementationBarriers[i].Suggestions = []string{}
		}
	}
}

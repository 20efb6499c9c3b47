package actionplan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/llmjson"
	"github.com/johnquangdev/meeting-insights/internal/usecase/stage"
	"github.com/johnquangdev/meeting-insights/pkg/validator"
)

var (
	wrapperKeys  = []string{"actionPlan", "action_plan", "plan"}
	actionKeys   = []string{"immediateActions", "immediate_actions", "actions", "action_items"}
	habitKeys    = []string{"habitFormation", "habit_formation", "habits"}
	scheduleKeys = []string{"schedulingStrategy", "scheduling_strategy", "schedule"}
	riskKeys     = []string{"riskMitigation", "risk_mitigation", "risks"}

	numberedAction  = regexp.MustCompile(`"action_\d+":\s*"([^"]+)"`)
	contentFragment = regexp.MustCompile(`"content":\s*"([^"]+)"`)
)

// Normalizer maps raw model output onto an ActionPlan. Salvaged and
// synthesized actions take their category and barriers from the insights
// the plan was generated for.
type Normalizer struct {
	insights *entities.MeetingInsights
	now      time.Time
}

// NewNormalizer binds the source insights and the reference time
func NewNormalizer(insights *entities.MeetingInsights, now time.Time) *Normalizer {
	return &Normalizer{insights: insights, now: now.UTC()}
}

// Normalize runs strict decode, shape coercion, text salvage and finally
// the mock, in that order. The result always has at least one action.
func (n *Normalizer) Normalize(raw string) stage.Outcome[*entities.ActionPlan] {
	if obj, ok := llmjson.ParseObject(raw); ok {
		if plan, ok := n.decodeStrict(obj); ok {
			return stage.Real(plan)
		}
		return n.coerce(obj)
	}
	if plan, ok := n.salvage(raw); ok {
		return stage.Degraded(plan, stage.ReasonSalvaged)
	}
	return stage.Degraded(n.mock(), stage.ReasonUnparsable)
}

type wireAction struct {
	entities.ActionItem
	DueDate string `json:"dueDate"`
}

type wireHabit struct {
	entities.Habit
	StartDate string `json:"startDate"`
}

type wirePlan struct {
	ImmediateActions   []wireAction              `json:"immediateActions"`
	HabitFormation     []wireHabit               `json:"habitFormation"`
	SchedulingStrategy []entities.ScheduleItem   `json:"schedulingStrategy"`
	RiskMitigation     []entities.RiskMitigation `json:"riskMitigation"`
}

// decodeStrict accepts output that already matches the canonical schema
func (n *Normalizer) decodeStrict(obj gjson.Result) (*entities.ActionPlan, bool) {
	if !obj.Get("immediateActions").IsArray() {
		return nil, false
	}
	var wire wirePlan
	if err := json.Unmarshal([]byte(obj.Raw), &wire); err != nil {
		return nil, false
	}

	plan := &entities.ActionPlan{
		ImmediateActions:   make([]entities.ActionItem, 0, len(wire.ImmediateActions)),
		HabitFormation:     make([]entities.Habit, 0, len(wire.HabitFormation)),
		SchedulingStrategy: wire.SchedulingStrategy,
		RiskMitigation:     wire.RiskMitigation,
	}
	for _, a := range wire.ImmediateActions {
		item := a.ActionItem
		item.DueDate = llmjson.ParseDate(a.DueDate, n.now, n.now.Add(week))
		plan.ImmediateActions = append(plan.ImmediateActions, item)
	}
	for _, h := range wire.HabitFormation {
		habit := h.Habit
		habit.StartDate = llmjson.ParseDate(h.StartDate, n.now, n.now)
		plan.HabitFormation = append(plan.HabitFormation, habit)
	}
	ensureSlices(plan)
	if validator.Struct(plan) != nil {
		return nil, false
	}
	return plan, true
}

// coerce reshapes wrappers, snake_case sections and loose item fields
func (n *Normalizer) coerce(obj gjson.Result) stage.Outcome[*entities.ActionPlan] {
	data := llmjson.Unwrap(obj, wrapperKeys...)
	mock := n.mock()
	plan := &entities.ActionPlan{}

	reason := ""
	if arr, ok := llmjson.FirstArray(data, actionKeys...); ok {
		for i, item := range arr.Array() {
			if action, ok := n.coerceAction(item, i); ok && llmjson.Valid(&action) {
				plan.ImmediateActions = append(plan.ImmediateActions, action)
			}
		}
		if len(plan.ImmediateActions) == 0 {
			plan.ImmediateActions = []entities.ActionItem{fallbackAction(n.insights, n.now)}
			reason = stage.ReasonNoContent
		}
	} else {
		plan.ImmediateActions = n.genericActions(data)
		if len(plan.ImmediateActions) == 0 {
			plan.ImmediateActions = mock.ImmediateActions
			reason = stage.ReasonNoContent
		}
	}

	plan.HabitFormation = llmjson.Section(data, habitKeys, n.coerceHabit, mock.HabitFormation)
	plan.SchedulingStrategy = llmjson.Section(data, scheduleKeys, coerceSchedule, mock.SchedulingStrategy)
	plan.RiskMitigation = llmjson.Section(data, riskKeys, coerceRisk, mock.RiskMitigation)

	ensureSlices(plan)
	if err := validator.Struct(plan); err != nil {
		return stage.Degraded(n.mock(), fmt.Sprintf("%s: %v", stage.ReasonUnparsable, err))
	}
	if reason != "" {
		return stage.Degraded(plan, reason)
	}
	return stage.Real(plan)
}

// genericActions turns top-level string values whose key mentions
// "action" into actions
func (n *Normalizer) genericActions(data gjson.Result) []entities.ActionItem {
	out := make([]entities.ActionItem, 0)
	data.ForEach(func(key, value gjson.Result) bool {
		if strings.Contains(strings.ToLower(key.String()), "action") && value.Type == gjson.String {
			if text := strings.TrimSpace(value.String()); text != "" {
				out = append(out, n.textAction(fmt.Sprintf("action-%d", len(out)+1), text, len(out), "general"))
			}
		}
		return true
	})
	return out
}

func (n *Normalizer) coerceAction(v gjson.Result, i int) (entities.ActionItem, bool) {
	if v.Type == gjson.String {
		text := strings.TrimSpace(v.String())
		if text == "" {
			return entities.ActionItem{}, false
		}
		return n.textAction(fmt.Sprintf("action-%d", i+1), text, i, "general"), true
	}
	if !v.IsObject() {
		return entities.ActionItem{}, false
	}

	probability, ok := llmjson.Probability(llmjson.First(v, "successProbability", "success_probability"), defaultProbability)
	if !ok {
		return entities.ActionItem{}, false
	}
	motivation, ok := llmjson.Probability(llmjson.First(v, "motivationLevel", "motivation_level"), defaultMotivation)
	if !ok {
		return entities.ActionItem{}, false
	}

	specifics := v.Get("specifics")
	item := entities.ActionItem{
		ID:                 llmjson.String(v, "id"),
		Title:              llmjson.String(v, "title", "task", "action", "name"),
		Description:        llmjson.String(v, "description", "content"),
		Category:           llmjson.String(v, "category"),
		Priority:           levelOrRank(v.Get("priority")),
		Complexity:         llmjson.Level(llmjson.String(v, "complexity", "difficulty"), entities.LevelMedium),
		EstimatedTime:      estimatedTime(v, specifics),
		DueDate:            llmjson.Date(llmjson.First(v, "dueDate", "due_date", "deadline"), n.now, n.now.Add(week)),
		SuccessProbability: probability,
		Barriers:           llmjson.Strings(llmjson.First(v, "barriers", "obstacles")),
		MotivationLevel:    motivation,
	}
	if item.ID == "" {
		item.ID = fmt.Sprintf("action-%d", i+1)
	}
	if item.Description == "" {
		item.Description = describeSpecifics(specifics)
	}
	if item.Description == "" {
		item.Description = llmjson.String(v, "task")
	}
	if item.Title == "" {
		if item.Description == "" {
			return entities.ActionItem{}, false
		}
		item.Title = item.Description
	}
	item.Title = llmjson.Title(item.Title)
	if item.Category == "" {
		item.Category, _ = n.context(i, "general")
	}
	item.Category = llmjson.Clip(item.Category, entities.MaxActionCategoryLen)
	return item, true
}

// textAction synthesizes an action from a bare sentence
func (n *Normalizer) textAction(id, text string, i int, defCategory string) entities.ActionItem {
	category, barriers := n.context(i, defCategory)
	motivation := defaultMotivation
	if n.insights != nil {
		if m, ok := llmjson.NormalizeProbability(n.insights.EmotionalContext.Motivation); ok {
			motivation = m
		}
	}
	return entities.ActionItem{
		ID:                 id,
		Title:              llmjson.Title(text),
		Description:        text,
		Category:           category,
		Priority:           entities.LevelMedium,
		Complexity:         entities.LevelMedium,
		EstimatedTime:      defaultEstimatedMin,
		DueDate:            n.now.Add(week),
		SuccessProbability: defaultProbability,
		Barriers:           barriers,
		MotivationLevel:    motivation,
	}
}

// context returns the category of the i-th advice item and the insight
// barriers, so synthesized actions stay on topic
func (n *Normalizer) context(i int, defCategory string) (string, []string) {
	barriers := barrierDescriptions(n.insights)
	if n.insights == nil || len(n.insights.AdviceGiven) == 0 {
		return defCategory, barriers
	}
	advice := n.insights.AdviceGiven[i%len(n.insights.AdviceGiven)]
	return categoryOr(string(advice.Category), defCategory), barriers
}

func (n *Normalizer) coerceHabit(v gjson.Result, _ int) (entities.Habit, bool) {
	if v.Type == gjson.String {
		text := strings.TrimSpace(v.String())
		return entities.Habit{Habit: text, StartDate: n.now}, text != ""
	}
	h := entities.Habit{
		Habit:     llmjson.String(v, "habit", "name", "title", "behavior"),
		Trigger:   llmjson.String(v, "trigger", "cue"),
		Reward:    llmjson.String(v, "reward"),
		Frequency: llmjson.String(v, "frequency"),
		StartDate: llmjson.Date(llmjson.First(v, "startDate", "start_date"), n.now, n.now),
	}
	return h, h.Habit != ""
}

func coerceSchedule(v gjson.Result, _ int) (entities.ScheduleItem, bool) {
	if v.Type == gjson.String {
		text := strings.TrimSpace(v.String())
		return entities.ScheduleItem{Action: text}, text != ""
	}
	duration, _ := llmjson.Minutes(llmjson.First(v, "duration", "duration_minutes"))
	s := entities.ScheduleItem{
		Action:      llmjson.String(v, "action", "title", "name"),
		OptimalTime: llmjson.String(v, "optimalTime", "optimal_time", "time", "when"),
		Duration:    duration,
		Context:     llmjson.String(v, "context", "notes"),
	}
	return s, s.Action != ""
}

func coerceRisk(v gjson.Result, _ int) (entities.RiskMitigation, bool) {
	if v.Type == gjson.String {
		text := strings.TrimSpace(v.String())
		return entities.RiskMitigation{Risk: text, Probability: 0.5}, text != ""
	}
	probability, ok := llmjson.Probability(llmjson.First(v, "probability", "likelihood"), 0.5)
	if !ok {
		return entities.RiskMitigation{}, false
	}
	r := entities.RiskMitigation{
		Risk:        llmjson.String(v, "risk", "name", "description"),
		Probability: probability,
		Impact:      llmjson.String(v, "impact"),
		Mitigation:  llmjson.String(v, "mitigation", "strategy", "plan"),
	}
	return r, r.Risk != ""
}

// salvage builds actions from "action_N" or "content" fragments
func (n *Normalizer) salvage(raw string) (*entities.ActionPlan, bool) {
	fragments := llmjson.Fragments(raw, numberedAction)
	if len(fragments) == 0 {
		fragments = llmjson.Fragments(raw, contentFragment)
	}
	if len(fragments) == 0 {
		return nil, false
	}
	plan := n.mock()
	plan.ImmediateActions = make([]entities.ActionItem, 0, len(fragments))
	for i, text := range fragments {
		plan.ImmediateActions = append(plan.ImmediateActions, n.textAction(fmt.Sprintf("text-action-%d", i+1), text, i, "productivity"))
	}
	return plan, true
}

func (n *Normalizer) mock() *entities.ActionPlan {
	return Mock(n.insights, n.now)
}

// levelOrRank reads a priority given as a word or as a 1–10 rank
func levelOrRank(v gjson.Result) entities.Level {
	if v.Type == gjson.Number {
		switch r := v.Float(); {
		case r >= 8:
			return entities.LevelHigh
		case r >= 5:
			return entities.LevelMedium
		default:
			return entities.LevelLow
		}
	}
	return llmjson.Level(v.String(), entities.LevelMedium)
}

func estimatedTime(v, specifics gjson.Result) int {
	if m, ok := llmjson.Minutes(llmjson.First(v, "estimatedTime", "estimated_time", "duration")); ok {
		return m
	}
	if specifics.IsObject() {
		if m, ok := llmjson.Minutes(llmjson.First(specifics, "estimatedTime", "duration")); ok {
			return m
		}
	}
	return defaultEstimatedMin
}

// describeSpecifics renders a {"duration","frequency","details"} object
func describeSpecifics(specifics gjson.Result) string {
	if specifics.Type == gjson.String {
		return strings.TrimSpace(specifics.String())
	}
	if !specifics.IsObject() {
		return ""
	}
	if d := llmjson.String(specifics, "description"); d != "" {
		return d
	}
	parts := make([]string, 0, 3)
	if d := llmjson.String(specifics, "duration"); d != "" {
		parts = append(parts, "Duration: "+d)
	}
	if f := llmjson.String(specifics, "frequency"); f != "" {
		parts = append(parts, "Frequency: "+f)
	}
	if d := llmjson.String(specifics, "details"); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, ", ")
}

// ensureSlices replaces nil sections so the stored JSON carries empty lists
func ensureSlices(p *entities.ActionPlan) {
	if p.HabitFormation == nil {
		p.HabitFormation = []entities.Habit{}
	}
	if p.SchedulingStrategy == nil {
		p.SchedulingStrategy = []entities.ScheduleItem{}
	}
	if p.RiskMitigation == nil {
		p.RiskMitigation = []entities.RiskMitigation{}
	}
	for i := range p.ImmediateActions {
		if p.ImmediateActions[i].Barriers == nil {
			p.ImmediateActions[i].Barriers = []string{}
		}
	}
}

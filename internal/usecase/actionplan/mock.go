package actionplan

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/llmjson"
)

const (
	week                = 7 * 24 * time.Hour
	defaultProbability  = 0.8
	defaultMotivation   = 0.7
	defaultEstimatedMin = 60
)

// Mock returns a deterministic plan relative to now. When insights carry
// advice the immediate actions are derived from it, otherwise the static
// focus/coaching/energy plan is used.
func Mock(insights *entities.MeetingInsights, now time.Time) *entities.ActionPlan {
	plan := &entities.ActionPlan{
		ImmediateActions:   staticActions(now),
		HabitFormation:     mockHabits(now),
		SchedulingStrategy: mockSchedule(),
		RiskMitigation:     mockRisks(),
	}
	if insights != nil && len(insights.AdviceGiven) > 0 {
		plan.ImmediateActions = deriveActions(insights, now)
	}
	return plan
}

// deriveActions turns each advice item into an action, carrying category,
// barriers and priority forward
func deriveActions(insights *entities.MeetingInsights, now time.Time) []entities.ActionItem {
	barriers := barrierDescriptions(insights)
	motivation, ok := llmjson.NormalizeProbability(insights.EmotionalContext.Motivation)
	if !ok {
		motivation = defaultMotivation
	}
	out := make([]entities.ActionItem, 0, len(insights.AdviceGiven))
	for i, advice := range insights.AdviceGiven {
		due := now.Add(2 * week)
		if i == 0 {
			due = now.Add(week)
		}
		out = append(out, entities.ActionItem{
			ID:                 fmt.Sprintf("action-%d", i+1),
			Title:              advice.Title,
			Description:        advice.Description,
			Category:           categoryOr(string(advice.Category), "general"),
			Priority:           llmjson.Level(string(advice.Impact), entities.LevelMedium),
			Complexity:         llmjson.Level(string(advice.Complexity), entities.LevelMedium),
			EstimatedTime:      estimateFor(advice.Complexity),
			DueDate:            due,
			SuccessProbability: successFor(insights, advice),
			Barriers:           append([]string{}, barriers...),
			MotivationLevel:    motivation,
		})
	}
	return out
}

// fallbackAction is synthesized when a response yields no usable action.
// It follows the top advice item when there is one.
func fallbackAction(insights *entities.MeetingInsights, now time.Time) entities.ActionItem {
	if insights != nil && len(insights.AdviceGiven) > 0 {
		return deriveActions(insights, now)[topAdvice(insights)]
	}
	return entities.ActionItem{
		ID:                 "default-1",
		Title:              "Implement meeting efficiency tools",
		Description:        "Set up and use digital tools to improve meeting productivity and note-taking",
		Category:           "productivity",
		Priority:           entities.LevelHigh,
		Complexity:         entities.LevelMedium,
		EstimatedTime:      defaultEstimatedMin,
		DueDate:            now.Add(week),
		SuccessProbability: defaultProbability,
		Barriers:           []string{"Learning curve", "Team adoption"},
		MotivationLevel:    0.8,
	}
}

// topAdvice returns the index of the advice ranked highest
func topAdvice(insights *entities.MeetingInsights) int {
	best, bestPriority := 0, -1
	for i, advice := range insights.AdviceGiven {
		for _, rank := range insights.PriorityRanking {
			if rank.ActionID == advice.ID && rank.Priority > bestPriority {
				best, bestPriority = i, rank.Priority
			}
		}
	}
	return best
}

func successFor(insights *entities.MeetingInsights, advice entities.AdviceItem) float64 {
	for _, rank := range insights.PriorityRanking {
		if rank.ActionID == advice.ID {
			return rank.SuccessProbability
		}
	}
	if c, ok := llmjson.NormalizeProbability(advice.Confidence); ok {
		return c
	}
	return defaultProbability
}

func categoryOr(category, def string) string {
	if category = strings.TrimSpace(category); category != "" {
		return category
	}
	return def
}

func estimateFor(complexity entities.Level) int {
	switch complexity {
	case entities.LevelLow:
		return 30
	case entities.LevelHigh:
		return 120
	default:
		return defaultEstimatedMin
	}
}

func barrierDescriptions(insights *entities.MeetingInsights) []string {
	out := make([]string, 0)
	if insights == nil {
		return out
	}
	for _, b := range insights.ImplementationBarriers {
		out = append(out, b.Description)
	}
	return out
}

func staticActions(now time.Time) []entities.ActionItem {
	nextWeek, twoWeeks := now.Add(week), now.Add(2*week)
	return []entities.ActionItem{
		{
			ID:                 "action-1",
			Title:              "Set up weekly focus blocks",
			Description:        "Block three 2-hour focus sessions every Monday morning, treat as non-negotiable meetings",
			Category:           "time-management",
			Priority:           entities.LevelHigh,
			Complexity:         entities.LevelLow,
			EstimatedTime:      30,
			DueDate:            nextWeek,
			SuccessProbability: 0.85,
			Barriers:           []string{"People booking over blocks", "Feeling guilty about boundaries"},
			MotivationLevel:    0.8,
		},
		{
			ID:                 "action-2",
			Title:              "Implement coaching questions framework",
			Description:        "Use 'What approaches have you considered?' before giving direct answers to team questions",
			Category:           "leadership",
			Priority:           entities.LevelHigh,
			Complexity:         entities.LevelMedium,
			EstimatedTime:      120,
			DueDate:            twoWeeks,
			SuccessProbability: 0.73,
			Barriers:           []string{"Feels slower than direct solutions", "Team pushback"},
			MotivationLevel:    0.7,
		},
		{
			ID:                 "action-3",
			Title:              "Track daily energy patterns",
			Description:        "Monitor energy levels hourly for 2 weeks to identify peak performance times",
			Category:           "personal",
			Priority:           entities.LevelMedium,
			Complexity:         entities.LevelLow,
			EstimatedTime:      10,
			DueDate:            twoWeeks,
			SuccessProbability: 0.91,
			Barriers:           []string{"Remembering to track", "Consistent measurement"},
			MotivationLevel:    0.6,
		},
	}
}

func mockHabits(now time.Time) []entities.Habit {
	return []entities.Habit{
		{
			Habit:     "Monday morning calendar blocking",
			Trigger:   "Monday 8am calendar review",
			Reward:    "Better strategic thinking capability",
			Frequency: "Weekly",
			StartDate: now.Add(week),
		},
		{
			Habit:     "Coaching question before solutions",
			Trigger:   "Team member asks question",
			Reward:    "Team growth and time savings",
			Frequency: "Daily",
			StartDate: now,
		},
	}
}

func mockSchedule() []entities.ScheduleItem {
	return []entities.ScheduleItem{
		{
			Action:      "Calendar blocking session",
			OptimalTime: "Monday 8:00-8:30 AM",
			Duration:    30,
			Context:     "Start of week, high energy, planning mindset",
		},
		{
			Action:      "Energy tracking check-ins",
			OptimalTime: "Every 2 hours during work day",
			Duration:    2,
			Context:     "Brief reflection on current energy and focus",
		},
	}
}

func mockRisks() []entities.RiskMitigation {
	return []entities.RiskMitigation{
		{
			Risk:        "Team members booking over focus blocks",
			Probability: 0.7,
			Impact:      "High - undermines entire strategy",
			Mitigation:  "Book conference rooms, set blocks as 'busy', prepare standard responses",
		},
		{
			Risk:        "Reverting to direct problem-solving under pressure",
			Probability: 0.8,
			Impact:      "Medium - slows team development",
			Mitigation:  "Practice coaching questions, set 5-minute rule before giving answers",
		},
	}
}

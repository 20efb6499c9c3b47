package insight

import "github.com/johnquangdev/meeting-insights/internal/domain/entities"

// MockConfidence is the overall confidence reported by Mock
const MockConfidence = 0.89

// Mock returns the deterministic insight set used when the model is
// unavailable. Every call returns a fresh value.
func Mock() *entities.MeetingInsights {
	return &entities.MeetingInsights{
		AdviceGiven:            mockAdvice(),
		BehavioralPatterns:     mockPatterns(),
		ImplementationBarriers: mockBarriers(),
		SuccessMetrics:         mockMetrics(),
		EmotionalContext:       mockEmotionalContext(),
		PriorityRanking:        mockRanking(),
		Confidence:             MockConfidence,
	}
}

func mockAdvice() []entities.AdviceItem {
	const mentor = "Sarah (Mentor)"
	return []entities.AdviceItem{
		{
			ID:              "advice-1",
			Title:           "Protect Calendar Time Like Client Meetings",
			Description:     "Block focused work time and treat it as non-negotiable, just like client meetings",
			Category:        entities.AdviceCategorySkills,
			Impact:          entities.LevelHigh,
			Complexity:      entities.LevelMedium,
			SupportingQuote: "You need to start treating your focus blocks like you would treat a client meeting",
			Speaker:         mentor,
			Timestamp:       120,
			Confidence:      0.95,
		},
		{
			ID:              "advice-2",
			Title:           "Coach Team Instead of Solving Problems",
			Description:     "Ask 'What approaches have you considered?' instead of immediately providing solutions",
			Category:        entities.AdviceCategoryLeadership,
			Impact:          entities.LevelHigh,
			Complexity:      entities.LevelMedium,
			SupportingQuote: "Try saying 'What approaches have you already considered?' or 'What would you do if I wasn't available?'",
			Speaker:         mentor,
			Timestamp:       380,
			Confidence:      0.92,
		},
		{
			ID:              "advice-3",
			Title:           "Track Energy Levels for Optimal Scheduling",
			Description:     "Monitor daily energy patterns and align important work with peak energy times",
			Category:        entities.AdviceCategoryPersonal,
			Impact:          entities.LevelMedium,
			Complexity:      entities.LevelLow,
			SupportingQuote: "Track your energy levels throughout the day for the next two weeks",
			Speaker:         mentor,
			Timestamp:       520,
			Confidence:      0.88,
		},
	}
}

func mockPatterns() []entities.BehavioralPattern {
	return []entities.BehavioralPattern{
		{
			Pattern:     "People-pleasing tendency",
			Description: "Difficulty saying no to meeting requests, worried about seeming unresponsive",
			Frequency:   3,
			Confidence:  0.87,
		},
		{
			Pattern:     "Reactive work style",
			Description: "Tends to jump in and solve problems immediately rather than coaching others",
			Frequency:   2,
			Confidence:  0.82,
		},
	}
}

func mockBarriers() []entities.ImplementationBarrier {
	return []entities.ImplementationBarrier{
		{
			Type:        entities.BarrierTypeMotivation,
			Description: "Fear of appearing difficult or unresponsive to colleagues",
			Severity:    entities.LevelMedium,
			Suggestions: []string{"Frame boundaries as enabling better service", "Practice saying no professionally"},
		},
		{
			Type:        entities.BarrierTypeTime,
			Description: "Feels faster to solve problems directly rather than coach team members",
			Severity:    entities.LevelMedium,
			Suggestions: []string{"Set coaching time limits", "Create quick coaching templates"},
		},
	}
}

func mockMetrics() []entities.SuccessMetric {
	return []entities.SuccessMetric{
		{
			Name:        "Focus Time Protected",
			Description: "Number of focus blocks successfully protected per week",
			Measurement: "Hours of uninterrupted focus time",
			Timeline:    "Weekly tracking",
		},
		{
			Name:        "Team Self-Sufficiency",
			Description: "Reduction in questions that team members could solve themselves",
			Measurement: "Number of coaching conversations vs direct solutions",
			Timeline:    "Monthly assessment",
		},
	}
}

func mockEmotionalContext() entities.EmotionalContext {
	return entities.EmotionalContext{
		Motivation: 0.8,
		Confidence: 0.6,
		Concerns:   []string{"Appearing unresponsive", "Team members getting stuck"},
		Excitement: 0.7,
	}
}

func mockRanking() []entities.PriorityRank {
	return []entities.PriorityRank{
		{ActionID: "advice-1", Priority: 9, Reasoning: "High impact on overall productivity and strategic thinking time", SuccessProbability: 0.85},
		{ActionID: "advice-2", Priority: 8, Reasoning: "Will scale impact and develop team capabilities", SuccessProbability: 0.73},
		{ActionID: "advice-3", Priority: 6, Reasoning: "Good optimization but lower urgency than time management fixes", SuccessProbability: 0.91},
	}
}

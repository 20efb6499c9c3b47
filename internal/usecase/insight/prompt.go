package insight

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

// SchemaName identifies the insight schema in structured-output requests
const SchemaName = "meeting_insights"

// MeetingContext is the meeting metadata passed alongside the transcript
type MeetingContext struct {
	MeetingType  string
	Participants []string
	Duration     int // minutes
	Speakers     []entities.SpeakerSegment
}

// Schema describes the canonical MeetingInsights shape
var Schema = ai.Object(
	ai.Prop("adviceGiven", ai.ArrayOf(ai.Object(
		ai.Prop("id", ai.String("stable id such as advice-1")),
		ai.Prop("title", ai.String("short imperative title")),
		ai.Prop("description", ai.String("what the mentee should do")),
		ai.Prop("category", ai.Enum("career", "skills", "leadership", "personal", "networking")),
		ai.Prop("impact", ai.Enum("high", "medium", "low")),
		ai.Prop("complexity", ai.Enum("low", "medium", "high")),
		ai.Prop("supportingQuote", ai.String("verbatim quote from the transcript")),
		ai.Prop("speaker", ai.String("who gave the advice")),
		ai.Prop("timestamp", ai.Number(0, 86400)),
		ai.Prop("confidence", ai.Number(0, 1)),
	))),
	ai.Prop("behavioralPatterns", ai.ArrayOf(ai.Object(
		ai.Prop("pattern", ai.String("name of the pattern")),
		ai.Prop("description", ai.String("")),
		ai.Prop("frequency", ai.Integer("times it came up")),
		ai.Prop("confidence", ai.Number(0, 1)),
	))),
	ai.Prop("implementationBarriers", ai.ArrayOf(ai.Object(
		ai.Prop("type", ai.Enum("time", "resources", "skills", "motivation", "external")),
		ai.Prop("description", ai.String("")),
		ai.Prop("severity", ai.Enum("low", "medium", "high")),
		ai.Prop("suggestions", ai.ArrayOf(ai.String(""))),
	))),
	ai.Prop("successMetrics", ai.ArrayOf(ai.Object(
		ai.Prop("name", ai.String("")),
		ai.Prop("description", ai.String("")),
		ai.Prop("measurement", ai.String("how progress is measured")),
		ai.Prop("timeline", ai.String("")),
	))),
	ai.Prop("emotionalContext", ai.Object(
		ai.Prop("motivation", ai.Number(0, 1)),
		ai.Prop("confidence", ai.Number(0, 1)),
		ai.Prop("concerns", ai.ArrayOf(ai.String(""))),
		ai.Prop("excitement", ai.Number(0, 1)),
	)),
	ai.Prop("priorityRanking", ai.ArrayOf(ai.Object(
		ai.Prop("actionId", ai.String("id of the advice item")),
		ai.Prop("priority", ai.Integer("1 (lowest) to 10 (highest)")),
		ai.Prop("reasoning", ai.String("")),
		ai.Prop("successProbability", ai.Number(0, 1)),
	))),
	ai.Prop("confidence", ai.Number(0, 1)),
)

// SystemPrompt builds the analyst instructions for one meeting
func SystemPrompt(mc MeetingContext) string {
	meetingType := mc.MeetingType
	if meetingType == "" {
		meetingType = entities.DefaultMeetingType
	}
	participants := "Unknown"
	if len(mc.Participants) > 0 {
		participants = strings.Join(mc.Participants, ", ")
	}
	duration := "unknown"
	if mc.Duration > 0 {
		duration = fmt.Sprintf("%d", mc.Duration)
	}

	return fmt.Sprintf(`You are a behavior change expert analyzing professional development conversations.

Context:
- Meeting Type: %s
- Participants: %s
- Duration: %s minutes

From this transcript, extract and categorize:

1. ADVICE GIVEN: Specific recommendations, suggestions, or guidance provided
2. BEHAVIORAL PATTERNS: Habits, tendencies, or patterns discussed about the mentee
3. IMPLEMENTATION BARRIERS: Obstacles, challenges, or concerns mentioned
4. SUCCESS METRICS: How progress should be measured or tracked
5. EMOTIONAL CONTEXT: Motivation levels, confidence, concerns, excitement
6. PRIORITY RANKING: Most important advice vs nice-to-have suggestions

Use confidence scores between 0 and 1 and quote the transcript verbatim.
Focus on actionable insights that can lead to measurable behavior change.`, meetingType, participants, duration)
}

// UserPrompt wraps the transcript. Speaker segments, when present, are
// rendered as "[MM:SS Speaker]: text" lines.
func UserPrompt(transcript string, speakers []entities.SpeakerSegment) string {
	return fmt.Sprintf("Transcript to analyze:\n%s\n\nRespond with a single JSON object only, no other text.", FormatTranscript(transcript, speakers))
}

// FormatTranscript prefers speaker segments over the flat transcript
func FormatTranscript(transcript string, speakers []entities.SpeakerSegment) string {
	if len(speakers) == 0 {
		return transcript
	}
	var sb strings.Builder
	for _, seg := range speakers {
		minutes := int(seg.Start) / 60
		seconds := int(seg.Start) % 60
		sb.WriteString(fmt.Sprintf("[%02d:%02d %s]: %s\n", minutes, seconds, seg.Speaker, seg.Text))
	}
	return sb.String()
}

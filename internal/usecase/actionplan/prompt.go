package actionplan

import (
	"encoding/json"
	"fmt"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

// SchemaName identifies the plan schema in structured-output requests
const SchemaName = "action_plan"

// UserContext describes who the plan is for
type UserContext struct {
	UserID       string
	MeetingTitle string
	MeetingType  string
}

// Schema describes the canonical ActionPlan shape. Dates travel as
// YYYY-MM-DD strings.
var Schema = ai.Object(
	ai.Prop("immediateActions", ai.ArrayOf(ai.Object(
		ai.Prop("id", ai.String("stable id such as action-1")),
		ai.Prop("title", ai.String("")),
		ai.Prop("description", ai.String("specific, measurable step")),
		ai.Prop("category", ai.String("area of the advice this implements")),
		ai.Prop("priority", ai.Enum("high", "medium", "low")),
		ai.Prop("complexity", ai.Enum("low", "medium", "high")),
		ai.Prop("estimatedTime", ai.Integer("minutes")),
		ai.Prop("dueDate", ai.String("YYYY-MM-DD within the next four weeks")),
		ai.Prop("successProbability", ai.Number(0, 1)),
		ai.Prop("barriers", ai.ArrayOf(ai.String(""))),
		ai.Prop("motivationLevel", ai.Number(0, 1)),
	))),
	ai.Prop("habitFormation", ai.ArrayOf(ai.Object(
		ai.Prop("habit", ai.String("")),
		ai.Prop("trigger", ai.String("")),
		ai.Prop("reward", ai.String("")),
		ai.Prop("frequency", ai.String("Daily, Weekly, ...")),
		ai.Prop("startDate", ai.String("YYYY-MM-DD")),
	))),
	ai.Prop("schedulingStrategy", ai.ArrayOf(ai.Object(
		ai.Prop("action", ai.String("")),
		ai.Prop("optimalTime", ai.String("")),
		ai.Prop("duration", ai.Integer("minutes")),
		ai.Prop("context", ai.String("")),
	))),
	ai.Prop("riskMitigation", ai.ArrayOf(ai.Object(
		ai.Prop("risk", ai.String("")),
		ai.Prop("probability", ai.Number(0, 1)),
		ai.Prop("impact", ai.String("")),
		ai.Prop("mitigation", ai.String("")),
	))),
)

const systemPrompt = `You are a behavior change expert creating actionable implementation plans from professional development conversations.

Create action items that are DIRECTLY BASED ON the specific advice, recommendations and topics in the insights provided. Do not create generic professional development advice.

For example:
- If the insights mention "use Google Drive search filters", create actions about practicing those specific filters
- If the insights mention "delegate more tasks", create actions about identifying delegation opportunities

Using the BJ Fogg Behavior Model, create a plan with:
1. IMMEDIATE ACTIONS: 3-5 specific tasks derived directly from the advice given
2. HABIT FORMATION: daily or weekly behaviors based on the conversation topics
3. SCHEDULING STRATEGY: when and how to implement each action
4. RISK MITIGATION: plans for overcoming likely obstacles

Every action must be measurable, time-bound and achievable within the next 1-4 weeks.`

// SystemPrompt returns the planner instructions
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt embeds the insights as indented JSON
func UserPrompt(insights *entities.MeetingInsights, uc UserContext) (string, error) {
	body, err := json.MarshalIndent(insights, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal insights: %w", err)
	}
	meeting := uc.MeetingTitle
	if meeting == "" {
		meeting = "mentoring conversation"
	}
	return fmt.Sprintf(`Based on these insights from "%s", create SPECIFIC action items that directly implement the advice given.

Insights:
%s

Respond with a single JSON object containing the action plan.`, meeting, body), nil
}

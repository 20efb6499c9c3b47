package entities

import "time"

// ActionPlan is the canonical output of action planning
type ActionPlan struct {
	ImmediateActions   []ActionItem     `json:"immediateActions" validate:"min=1,dive"`
	HabitFormation     []Habit          `json:"habitFormation" validate:"dive"`
	SchedulingStrategy []ScheduleItem   `json:"schedulingStrategy" validate:"dive"`
	RiskMitigation     []RiskMitigation `json:"riskMitigation" validate:"dive"`
}

// ActionItem is one concrete step the mentee should take
type ActionItem struct {
	ID                 string    `json:"id" validate:"required"`
	Title              string    `json:"title" validate:"required"`
	Description        string    `json:"description"`
	Category           string    `json:"category" validate:"required"`
	Priority           Level     `json:"priority" validate:"oneof=high medium low"`
	Complexity         Level     `json:"complexity" validate:"oneof=low medium high"`
	EstimatedTime      int       `json:"estimatedTime" validate:"gt=0"` // minutes
	DueDate            time.Time `json:"dueDate"`
	SuccessProbability float64   `json:"successProbability" validate:"gte=0,lte=1"`
	Barriers           []string  `json:"barriers"`
	MotivationLevel    float64   `json:"motivationLevel" validate:"gte=0,lte=1"`
}

// Habit is a recurring behavior to build
type Habit struct {
	Habit     string    `json:"habit" validate:"required"`
	Trigger   string    `json:"trigger"`
	Reward    string    `json:"reward"`
	Frequency string    `json:"frequency"`
	StartDate time.Time `json:"startDate"`
}

// ScheduleItem places an action in the calendar
type ScheduleItem struct {
	Action      string `json:"action" validate:"required"`
	OptimalTime string `json:"optimalTime"`
	Duration    int    `json:"duration" validate:"gte=0"` // minutes
	Context     string `json:"context"`
}

// RiskMitigation pairs a likely failure mode with a countermeasure
type RiskMitigation struct {
	Risk        string  `json:"risk" validate:"required"`
	Probability float64 `json:"probability" validate:"gte=0,lte=1"`
	Impact      string  `json:"impact"`
	Mitigation  string  `json:"mitigation"`
}

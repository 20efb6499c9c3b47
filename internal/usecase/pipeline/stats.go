package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

const (
	statsUpcomingLimit = 5
	statsRecentLimit   = 3
	statsPageSize      = 100
)

// UserStats summarizes a user's implementation progress
type UserStats struct {
	ImplementationRate        int              `json:"implementation_rate"` // percent of actions completed
	ActionsCompleted          int              `json:"actions_completed"`
	TotalActions              int              `json:"total_actions"`
	TotalMeetings             int              `json:"total_meetings"`
	AverageSuccessProbability int              `json:"average_success_probability"` // percent
	HighPriorityPending       int              `json:"high_priority_pending"`
	UpcomingActions           []UpcomingAction `json:"upcoming_actions"`
	RecentMeetings            []RecentMeeting  `json:"recent_meetings"`
}

// UpcomingAction is an open action, earliest due first
type UpcomingAction struct {
	ID            uuid.UUID             `json:"id"`
	Title         string                `json:"title"`
	DueDate       time.Time             `json:"due_date"`
	Priority      entities.Level        `json:"priority"`
	Status        entities.ActionStatus `json:"status"`
	EstimatedTime int                   `json:"estimated_time"`
}

// RecentMeeting is one of the user's latest meetings with its action count
type RecentMeeting struct {
	ID        uuid.UUID                 `json:"id"`
	Title     string                    `json:"title"`
	CreatedAt time.Time                 `json:"created_at"`
	Status    entities.ProcessingStatus `json:"processing_status"`
	Actions   int                       `json:"actions"`
}

// UserStats aggregates the user's actions and meetings for the dashboard
func (o *Orchestrator) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	actions, err := o.actions.ListUserActions(ctx, entities.ActionFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	meetings, err := o.allMeetings(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{
		TotalActions:    len(actions),
		TotalMeetings:   len(meetings),
		UpcomingActions: []UpcomingAction{},
		RecentMeetings:  []RecentMeeting{},
	}

	perMeeting := make(map[uuid.UUID]int)
	var probability float64
	var open []*entities.Action
	for _, a := range actions {
		perMeeting[a.MeetingID]++
		probability += a.SuccessProbability
		if a.Status == entities.ActionStatusCompleted {
			stats.ActionsCompleted++
			continue
		}
		open = append(open, a)
		if a.Priority == entities.LevelHigh {
			stats.HighPriorityPending++
		}
	}
	if len(actions) > 0 {
		stats.ImplementationRate = int(math.Round(float64(stats.ActionsCompleted) / float64(len(actions)) * 100))
		stats.AverageSuccessProbability = int(math.Round(probability / float64(len(actions)) * 100))
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].DueDate.Before(open[j].DueDate)
	})
	for i, a := range open {
		if i == statsUpcomingLimit {
			break
		}
		stats.UpcomingActions = append(stats.UpcomingActions, UpcomingAction{
			ID:            a.ID,
			Title:         a.Title,
			DueDate:       a.DueDate,
			Priority:      a.Priority,
			Status:        a.Status,
			EstimatedTime: a.EstimatedTime,
		})
	}

	for i, m := range meetings {
		if i == statsRecentLimit {
			break
		}
		stats.RecentMeetings = append(stats.RecentMeetings, RecentMeeting{
			ID:        m.ID,
			Title:     m.Title,
			CreatedAt: m.CreatedAt,
			Status:    m.ProcessingStatus,
			Actions:   perMeeting[m.ID],
		})
	}
	return stats, nil
}

// allMeetings pages through every meeting of the user, newest first
func (o *Orchestrator) allMeetings(ctx context.Context, userID string) ([]*entities.Meeting, error) {
	var all []*entities.Meeting
	for offset := 0; ; offset += statsPageSize {
		page, err := o.meetings.ListMeetings(ctx, userID, statsPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list meetings: %w", err)
		}
		all = append(all, page...)
		if len(page) < statsPageSize {
			return all, nil
		}
	}
}

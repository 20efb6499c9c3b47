package meeting

import (
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MeetingSummaryResponse is a meeting row in list responses
type MeetingSummaryResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	MeetingType      string     `json:"meeting_type"`
	Participants     []string   `json:"participants"`
	Duration         int        `json:"duration"`
	ProcessingStatus string     `json:"processing_status"`
	Confidence       float64    `json:"confidence"`
	FailedStage      *string    `json:"failed_stage,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
}

// StatusResponse answers GET /meetings/:id
type StatusResponse struct {
	Status  string             `json:"status"`
	Meeting *entities.Meeting  `json:"meeting"`
	Actions []*entities.Action `json:"actions"`
}

// ProcessResponse answers a synchronous POST /meetings/:id/process
type ProcessResponse struct {
	Meeting *entities.Meeting  `json:"meeting"`
	Actions []*entities.Action `json:"actions"`
}

// QueuedResponse answers an asynchronous POST /meetings/:id/process
type QueuedResponse struct {
	MeetingID   string `json:"meeting_id"`
	Status      string `json:"status"`
	ProgressURL string `json:"progress_url"`
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingStage is the coarse step reported to clients while a run is active
type ProcessingStage string

const (
	ProcessingStageUploaded     ProcessingStage = "uploaded"
	ProcessingStageTranscribing ProcessingStage = "transcribing"
	ProcessingStageAnalyzing    ProcessingStage = "analyzing"
	ProcessingStagePlanning     ProcessingStage = "planning"
	ProcessingStageSaving       ProcessingStage = "saving"
	ProcessingStageCompleted    ProcessingStage = "completed"
	ProcessingStageFailed       ProcessingStage = "failed"
)

// ProcessingProgress is the latest progress snapshot of a meeting
type ProcessingProgress struct {
	MeetingID uuid.UUID       `json:"meeting_id"`
	Stage     ProcessingStage `json:"stage"`
	Progress  int             `json:"progress"` // 0-100
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

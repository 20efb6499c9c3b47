package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProcessingStatus represents where a meeting is in the processing pipeline
type ProcessingStatus string

const (
	ProcessingStatusUploaded   ProcessingStatus = "uploaded"   // Created, waiting for a process request
	ProcessingStatusProcessing ProcessingStatus = "processing" // A run owns the meeting
	ProcessingStatusCompleted  ProcessingStatus = "completed"  // All stages done and actions persisted
	ProcessingStatusFailed     ProcessingStatus = "failed"     // A stage failed, see FailedStage
)

// IsTerminal reports whether no further stage may run
func (s ProcessingStatus) IsTerminal() bool {
	return s == ProcessingStatusCompleted || s == ProcessingStatusFailed
}

// CanTransitionTo enforces uploaded -> processing -> {completed, failed}
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case ProcessingStatusUploaded:
		return next == ProcessingStatusProcessing
	case ProcessingStatusProcessing:
		return next == ProcessingStatusCompleted || next == ProcessingStatusFailed
	default:
		return false
	}
}

// StageMode tells whether a stage output came from the live service or a fallback
type StageMode string

const (
	StageModeReal     StageMode = "real"
	StageModeDegraded StageMode = "degraded"
)

// Default meeting metadata used when the uploader supplies none
const (
	DefaultMeetingType = "mentor_session"
)

// DefaultParticipants is applied to meetings created without a participant list
var DefaultParticipants = []string{"Mentor", "Mentee"}

// Meeting is a recorded conversation and everything derived from it
type Meeting struct {
	ID               uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           string                      `json:"user_id" gorm:"type:varchar(255);not null;index"`
	Title            string                      `json:"title" gorm:"type:varchar(255);not null"`
	Description      string                      `json:"description,omitempty" gorm:"type:text"`
	MeetingType      string                      `json:"meeting_type" gorm:"type:varchar(50);not null"`
	Participants     datatypes.JSONSlice[string] `json:"participants"`
	AudioRef         string                      `json:"audio_ref" gorm:"type:text;not null"`
	OriginalFileName string                      `json:"original_file_name,omitempty" gorm:"type:varchar(255)"`
	FileSize         int64                       `json:"file_size,omitempty" gorm:"type:bigint"`

	// Transcription output
	Duration   int              `json:"duration" gorm:"type:integer;not null"` // minutes
	Transcript *string          `json:"transcript,omitempty" gorm:"type:text"`
	Speakers   []SpeakerSegment `json:"speakers,omitempty" gorm:"type:jsonb;serializer:json"`
	Language   string           `json:"language,omitempty" gorm:"type:varchar(16)"`

	// AI output
	Insights   *MeetingInsights `json:"insights,omitempty" gorm:"type:jsonb;serializer:json"`
	ActionPlan *ActionPlan      `json:"action_plan,omitempty" gorm:"type:jsonb;serializer:json"`
	Confidence float64          `json:"confidence" gorm:"type:double precision;not null"`

	// Lifecycle
	ProcessingStatus  ProcessingStatus `json:"processing_status" gorm:"type:varchar(20);not null;index"`
	TranscriptionMode StageMode        `json:"transcription_mode,omitempty" gorm:"type:varchar(20)"`
	InsightsMode      StageMode        `json:"insights_mode,omitempty" gorm:"type:varchar(20)"`
	PlanMode          StageMode        `json:"plan_mode,omitempty" gorm:"type:varchar(20)"`
	FailedStage       *string          `json:"failed_stage,omitempty" gorm:"type:varchar(50)"`
	FailureReason     *string          `json:"failure_reason,omitempty" gorm:"type:text"`

	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	ProcessingStartedAt *time.Time `json:"processing_started_at,omitempty"`
	ProcessedAt         *time.Time `json:"processed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a meeting in the uploaded state
func NewMeeting(userID, title, audioRef string) *Meeting {
	return &Meeting{
		ID:               uuid.New(),
		UserID:           userID,
		Title:            title,
		MeetingType:      DefaultMeetingType,
		Participants:     append(datatypes.JSONSlice[string]{}, DefaultParticipants...),
		AudioRef:         audioRef,
		ProcessingStatus: ProcessingStatusUploaded,
	}
}

// MeetingUpdate carries the content fields a processing run writes.
// Nil fields are left untouched.
type MeetingUpdate struct {
	Transcript        *string
	Speakers          []SpeakerSegment
	Language          *string
	Duration          *int
	TranscriptionMode *StageMode
	Insights          *MeetingInsights
	InsightsMode      *StageMode
	Confidence        *float64
	ActionPlan        *ActionPlan
	PlanMode          *StageMode
}

// Apply copies the set fields onto m
func (u MeetingUpdate) Apply(m *Meeting) {
	if u.Transcript != nil {
		m.Transcript = u.Transcript
	}
	if u.Speakers != nil {
		m.Speakers = u.Speakers
	}
	if u.Language != nil {
		m.Language = *u.Language
	}
	if u.Duration != nil {
		m.Duration = *u.Duration
	}
	if u.TranscriptionMode != nil {
		m.TranscriptionMode = *u.TranscriptionMode
	}
	if u.Insights != nil {
		m.Insights = u.Insights
	}
	if u.InsightsMode != nil {
		m.InsightsMode = *u.InsightsMode
	}
	if u.Confidence != nil {
		m.Confidence = *u.Confidence
	}
	if u.ActionPlan != nil {
		m.ActionPlan = u.ActionPlan
	}
	if u.PlanMode != nil {
		m.PlanMode = *u.PlanMode
	}
}

// StatusChange describes a compare-and-swap on ProcessingStatus together
// with the scalar fields stamped at that moment.
type StatusChange struct {
	From          ProcessingStatus
	To            ProcessingStatus
	At            time.Time
	Confidence    *float64
	FailedStage   string
	FailureReason string
}

// Apply writes the change onto m. Callers check From against the stored
// status before calling.
func (c StatusChange) Apply(m *Meeting) {
	m.ProcessingStatus = c.To
	at := c.At
	switch c.To {
	case ProcessingStatusProcessing:
		m.ProcessingStartedAt = &at
	case ProcessingStatusCompleted:
		m.ProcessedAt = &at
		if c.Confidence != nil {
			m.Confidence = *c.Confidence
		}
	case ProcessingStatusFailed:
		m.ProcessedAt = &at
		if c.FailedStage != "" {
			stage := c.FailedStage
			m.FailedStage = &stage
		}
		if c.FailureReason != "" {
			reason := c.FailureReason
			m.FailureReason = &reason
		}
	}
}

// Columns returns the column/value map used by SQL stores
func (c StatusChange) Columns() map[string]interface{} {
	cols := map[string]interface{}{
		"processing_status": c.To,
		"updated_at":        c.At,
	}
	switch c.To {
	case ProcessingStatusProcessing:
		cols["processing_started_at"] = c.At
	case ProcessingStatusCompleted:
		cols["processed_at"] = c.At
		if c.Confidence != nil {
			cols["confidence"] = *c.Confidence
		}
	case ProcessingStatusFailed:
		cols["processed_at"] = c.At
		if c.FailedStage != "" {
			cols["failed_stage"] = c.FailedStage
		}
		if c.FailureReason != "" {
			cols["failure_reason"] = c.FailureReason
		}
	}
	return cols
}

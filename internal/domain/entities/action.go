package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActionStatus represents the user's progress on an action
type ActionStatus string

const (
	ActionStatusPending    ActionStatus = "pending"     // Created from the action plan
	ActionStatusInProgress ActionStatus = "in_progress" // User started working on it
	ActionStatusCompleted  ActionStatus = "completed"   // Done, CompletedAt is set
)

func (s ActionStatus) rank() int {
	switch s {
	case ActionStatusPending:
		return 0
	case ActionStatusInProgress:
		return 1
	case ActionStatusCompleted:
		return 2
	default:
		return -1
	}
}

// IsValid reports whether s is a known status
func (s ActionStatus) IsValid() bool {
	return s.rank() >= 0
}

// CanTransitionTo allows staying put or moving forward only
func (s ActionStatus) CanTransitionTo(next ActionStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	return next.rank() >= s.rank()
}

// Action is a persisted, user-owned task derived from an ActionItem
type Action struct {
	ID                  uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID           uuid.UUID                   `json:"meeting_id" gorm:"type:uuid;not null;index"`
	UserID              string                      `json:"user_id" gorm:"type:varchar(255);not null;index"`
	Title               string                      `json:"title" gorm:"type:varchar(255);not null"`
	Description         string                      `json:"description" gorm:"type:text"`
	Category            string                      `json:"category" gorm:"type:varchar(50);not null"`
	Priority            Level                       `json:"priority" gorm:"type:varchar(20);not null"`
	Complexity          Level                       `json:"complexity" gorm:"type:varchar(20);not null"`
	EstimatedTime       int                         `json:"estimated_time" gorm:"type:integer;not null"` // minutes
	DueDate             time.Time                   `json:"due_date" gorm:"not null;index"`
	SuccessProbability  float64                     `json:"success_probability" gorm:"type:double precision;not null"`
	Barriers            datatypes.JSONSlice[string] `json:"barriers"`
	MotivationLevel     float64                     `json:"motivation_level" gorm:"type:double precision;not null"`
	Status              ActionStatus                `json:"status" gorm:"type:varchar(20);not null;index"`
	CompletedAt         *time.Time                  `json:"completed_at,omitempty"`
	ImplementationNotes *string                     `json:"implementation_notes,omitempty" gorm:"type:text"`
	CreatedAt           time.Time                   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time                   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Action) TableName() string {
	return "actions"
}

// Column widths of the actions table
const (
	MaxActionTitleLen    = 255
	MaxActionCategoryLen = 50
)

// NewActionFromItem materializes a plan item for the meeting's owner
func NewActionFromItem(meeting *Meeting, item ActionItem) *Action {
	barriers := make(datatypes.JSONSlice[string], 0, len(item.Barriers))
	barriers = append(barriers, item.Barriers...)
	return &Action{
		ID:                 uuid.New(),
		MeetingID:          meeting.ID,
		UserID:             meeting.UserID,
		Title:              clip(item.Title, MaxActionTitleLen),
		Description:        item.Description,
		Category:           clip(item.Category, MaxActionCategoryLen),
		Priority:           item.Priority,
		Complexity:         item.Complexity,
		EstimatedTime:      item.EstimatedTime,
		DueDate:            item.DueDate,
		SuccessProbability: item.SuccessProbability,
		Barriers:           barriers,
		MotivationLevel:    item.MotivationLevel,
		Status:             ActionStatusPending,
	}
}

// ActionUpdate is a user-driven status change
type ActionUpdate struct {
	Status              ActionStatus
	ImplementationNotes *string
	At                  time.Time
}

// ApplyUpdate moves the action forward and stamps CompletedAt
func (a *Action) ApplyUpdate(u ActionUpdate) error {
	next := u.Status
	if next == "" {
		next = a.Status
	}
	if !next.IsValid() {
		return ErrInvalidActionStatus
	}
	if !a.Status.CanTransitionTo(next) {
		return ErrInvalidActionTransition
	}
	if next == ActionStatusCompleted && a.Status != ActionStatusCompleted {
		at := u.At
		a.CompletedAt = &at
	}
	a.Status = next
	if u.ImplementationNotes != nil {
		notes := *u.ImplementationNotes
		a.ImplementationNotes = &notes
	}
	return nil
}

// ActionFilter narrows a user's action listing
type ActionFilter struct {
	UserID string
	Status ActionStatus
}

// clip cuts s to n runes, matching varchar(n) semantics
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

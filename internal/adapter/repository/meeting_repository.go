package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// CreateMeeting creates a new meeting
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}
	if meeting.ProcessingStatus == "" {
		meeting.ProcessingStatus = entities.ProcessingStatusUploaded
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// GetMeeting retrieves a meeting by ID
func (r *MeetingRepository) GetMeeting(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// UpdateMeeting writes only the content columns carried by the update so a
// concurrent status transition is never overwritten. Content is only written
// while the meeting is processing.
func (r *MeetingRepository) UpdateMeeting(ctx context.Context, id uuid.UUID, update entities.MeetingUpdate) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&meeting).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entities.ErrMeetingNotFound
			}
			return err
		}
		if meeting.ProcessingStatus != entities.ProcessingStatusProcessing {
			return entities.ErrInvalidStatusTransition
		}

		columns := meetingUpdateColumns(update)
		if len(columns) == 0 {
			return nil
		}

		update.Apply(&meeting)
		meeting.UpdatedAt = time.Now().UTC()
		result := tx.Model(&meeting).
			Where("processing_status = ?", entities.ProcessingStatusProcessing).
			Select(append(columns, "updated_at")).
			Updates(&meeting)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.ErrInvalidStatusTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// TransitionStatus performs the status compare-and-swap in a single UPDATE
func (r *MeetingRepository) TransitionStatus(ctx context.Context, id uuid.UUID, change entities.StatusChange) (bool, error) {
	if !change.From.CanTransitionTo(change.To) {
		return false, entities.ErrInvalidStatusTransition
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND processing_status = ?", id, change.From).
		Updates(change.Columns())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CompleteMeeting stores the actions and performs the completion
// compare-and-swap in one transaction. When the meeting already left
// change.From nothing is stored and false is returned.
func (r *MeetingRepository) CompleteMeeting(ctx context.Context, id uuid.UUID, change entities.StatusChange, actions []*entities.Action) (bool, error) {
	if !change.From.CanTransitionTo(change.To) {
		return false, entities.ErrInvalidStatusTransition
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	completed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The UPDATE takes the row lock, so the sweeper cannot fail the
		// meeting between the swap and the inserts.
		result := tx.Model(&entities.Meeting{}).
			Where("id = ? AND processing_status = ?", id, change.From).
			Updates(change.Columns())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		for _, a := range actions {
			if err := prepareAction(a); err != nil {
				return err
			}
		}
		if len(actions) > 0 {
			if err := tx.Create(actions).Error; err != nil {
				return err
			}
		}
		completed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return completed, nil
}

// ListMeetings retrieves a user's meetings, newest first
func (r *MeetingRepository) ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// ListStaleProcessing retrieves meetings stuck in processing since before the cutoff
func (r *MeetingRepository) ListStaleProcessing(ctx context.Context, before time.Time, limit int) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	query := r.db.WithContext(ctx).
		Where("processing_status = ? AND processing_started_at < ?", entities.ProcessingStatusProcessing, before).
		Order("processing_started_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func meetingUpdateColumns(u entities.MeetingUpdate) []string {
	var columns []string
	if u.Transcript != nil {
		columns = append(columns, "transcript")
	}
	if u.Speakers != nil {
		columns = append(columns, "speakers")
	}
	if u.Language != nil {
		columns = append(columns, "language")
	}
	if u.Duration != nil {
		columns = append(columns, "duration")
	}
	if u.TranscriptionMode != nil {
		columns = append(columns, "transcription_mode")
	}
	if u.Insights != nil {
		columns = append(columns, "insights")
	}
	if u.InsightsMode != nil {
		columns = append(columns, "insights_mode")
	}
	if u.Confidence != nil {
		columns = append(columns, "confidence")
	}
	if u.ActionPlan != nil {
		columns = append(columns, "action_plan")
	}
	if u.PlanMode != nil {
		columns = append(columns, "plan_mode")
	}
	return columns
}

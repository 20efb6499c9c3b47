package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// CreateMeeting stores a new meeting
	CreateMeeting(ctx context.Context, meeting *entities.Meeting) error

	// GetMeeting retrieves a meeting by ID, returning nil when it does not exist
	GetMeeting(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// UpdateMeeting applies content fields and returns the stored meeting.
	// Returns entities.ErrMeetingNotFound when the meeting does not exist and
	// entities.ErrInvalidStatusTransition when it is not processing.
	UpdateMeeting(ctx context.Context, id uuid.UUID, update entities.MeetingUpdate) (*entities.Meeting, error)

	// TransitionStatus atomically moves the meeting from change.From to change.To.
	// It reports false without error when the stored status is not change.From.
	TransitionStatus(ctx context.Context, id uuid.UUID, change entities.StatusChange) (bool, error)

	// CompleteMeeting stores actions and moves the meeting from change.From to
	// change.To atomically. It reports false without storing anything when
	// the stored status is not change.From.
	CompleteMeeting(ctx context.Context, id uuid.UUID, change entities.StatusChange, actions []*entities.Action) (bool, error)

	// ListMeetings retrieves a user's meetings, newest first
	ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entities.Meeting, error)

	// ListStaleProcessing retrieves meetings that entered processing before the cutoff
	ListStaleProcessing(ctx context.Context, before time.Time, limit int) ([]*entities.Meeting, error)
}

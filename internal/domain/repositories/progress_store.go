package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// ProgressStore keeps the latest processing progress of each meeting
type ProgressStore interface {
	// SetProgress overwrites the snapshot for progress.MeetingID
	SetProgress(ctx context.Context, progress entities.ProcessingProgress) error

	// GetProgress returns entities.ErrProgressNotFound when nothing was recorded
	GetProgress(ctx context.Context, meetingID uuid.UUID) (*entities.ProcessingProgress, error)
}

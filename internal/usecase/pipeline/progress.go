package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/stage"
)

// setProgress records a snapshot. Failures are logged and never fail a run.
func (o *Orchestrator) setProgress(ctx context.Context, meetingID uuid.UUID, st entities.ProcessingStage, pct int, message, errMsg string) {
	if o.progress == nil {
		return
	}
	err := o.progress.SetProgress(context.WithoutCancel(ctx), entities.ProcessingProgress{
		MeetingID: meetingID,
		Stage:     st,
		Progress:  pct,
		Message:   message,
		Error:     errMsg,
		UpdatedAt: o.now(),
	})
	if err != nil {
		o.logger.Warn("⚠️ Failed to record progress",
			zap.String("meeting_id", meetingID.String()),
			zap.String("stage", string(st)),
			zap.Error(err),
		)
	}
}

// GetProgress returns the latest snapshot, or one derived from the stored
// status when nothing was recorded (expired or never written).
func (o *Orchestrator) GetProgress(ctx context.Context, meetingID uuid.UUID) (*entities.ProcessingProgress, error) {
	m, err := o.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting: %w", err)
	}
	if m == nil {
		return nil, entities.ErrMeetingNotFound
	}

	if o.progress != nil {
		p, err := o.progress.GetProgress(ctx, meetingID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, entities.ErrProgressNotFound) {
			o.logger.Warn("⚠️ Failed to read progress",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(err),
			)
		}
	}
	return progressFromMeeting(m), nil
}

func progressFromMeeting(m *entities.Meeting) *entities.ProcessingProgress {
	p := &entities.ProcessingProgress{MeetingID: m.ID, UpdatedAt: m.UpdatedAt}
	switch m.ProcessingStatus {
	case entities.ProcessingStatusUploaded:
		p.Stage = entities.ProcessingStageUploaded
	case entities.ProcessingStatusProcessing:
		p.Stage = entities.ProcessingStageTranscribing
		p.Progress = 10
	case entities.ProcessingStatusCompleted:
		p.Stage = entities.ProcessingStageCompleted
		p.Progress = 100
	case entities.ProcessingStatusFailed:
		p.Stage = entities.ProcessingStageFailed
		p.Progress = 100
		if m.FailureReason != nil {
			p.Error = *m.FailureReason
		}
	}
	return p
}

// stageFor maps a progress stage onto the pipeline stage name
func stageFor(st entities.ProcessingStage) string {
	switch st {
	case entities.ProcessingStageTranscribing:
		return stage.Transcription
	case entities.ProcessingStageAnalyzing:
		return stage.InsightExtraction
	case entities.ProcessingStagePlanning:
		return stage.ActionPlanning
	case entities.ProcessingStageSaving:
		return stage.ActionPersistence
	default:
		return stage.Unknown
	}
}

// Package pipeline drives a meeting through transcription, insight
// extraction, action planning and action persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/internal/usecase/actionplan"
	usecaseErrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insight"
	"github.com/johnquangdev/meeting-insights/internal/usecase/stage"
	"github.com/johnquangdev/meeting-insights/internal/usecase/transcription"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

// Transcriber produces the transcript of a meeting's media
type Transcriber interface {
	Transcribe(ctx context.Context, audioRef string) (*entities.TranscriptionResult, error)
	Mock(ctx context.Context, audioRef string) (*entities.TranscriptionResult, error)
}

// InsightExtractor never fails, see insight.Extractor
type InsightExtractor interface {
	Extract(ctx context.Context, transcript string, mc insight.MeetingContext) stage.Outcome[*entities.MeetingInsights]
}

// PlanGenerator never fails, see actionplan.Generator
type PlanGenerator interface {
	Plan(ctx context.Context, insights *entities.MeetingInsights, uc actionplan.UserContext) stage.Outcome[*entities.ActionPlan]
}

// Result is a meeting together with its materialized actions
type Result struct {
	Meeting *entities.Meeting  `json:"meeting"`
	Actions []*entities.Action `json:"actions"`
}

// Status is the answer to a status query
type Status struct {
	Status  entities.ProcessingStatus `json:"status"`
	Meeting *entities.Meeting         `json:"meeting"`
	Actions []*entities.Action        `json:"actions"`
}

// CreateMeetingInput describes a newly uploaded meeting
type CreateMeetingInput struct {
	UserID           string
	Title            string
	Description      string
	MeetingType      string
	Participants     []string
	AudioRef         string
	OriginalFileName string
	FileSize         int64
}

// Orchestrator owns the meeting lifecycle
type Orchestrator struct {
	meetings    repositories.MeetingRepository
	actions     repositories.ActionRepository
	progress    repositories.ProgressStore
	transcriber Transcriber
	extractor   InsightExtractor
	planner     PlanGenerator
	mockOnError bool
	now         func() time.Time
	logger      *zap.Logger
}

// NewOrchestrator creates an orchestrator. progress may be nil.
func NewOrchestrator(
	meetings repositories.MeetingRepository,
	actions repositories.ActionRepository,
	progress repositories.ProgressStore,
	transcriber Transcriber,
	extractor InsightExtractor,
	planner PlanGenerator,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		meetings:    meetings,
		actions:     actions,
		progress:    progress,
		transcriber: transcriber,
		extractor:   extractor,
		planner:     planner,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// WithMockFallback substitutes the mock transcript when the transcription
// backend fails for any reason other than missing media.
func (o *Orchestrator) WithMockFallback(enabled bool) *Orchestrator {
	o.mockOnError = enabled
	return o
}

// WithClock replaces the time source used for lifecycle timestamps
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// CreateMeeting stores a meeting in the uploaded state
func (o *Orchestrator) CreateMeeting(ctx context.Context, in CreateMeetingInput) (*entities.Meeting, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, usecaseErrors.ErrTitleRequired
	}
	if strings.TrimSpace(in.AudioRef) == "" {
		return nil, usecaseErrors.ErrAudioRequired
	}

	m := entities.NewMeeting(in.UserID, strings.TrimSpace(in.Title), in.AudioRef)
	m.Description = in.Description
	m.OriginalFileName = in.OriginalFileName
	m.FileSize = in.FileSize
	if in.MeetingType != "" {
		m.MeetingType = in.MeetingType
	}
	if len(in.Participants) > 0 {
		m.Participants = append(m.Participants[:0], in.Participants...)
	}

	if err := o.meetings.CreateMeeting(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	o.setProgress(ctx, m.ID, entities.ProcessingStageUploaded, 0, "Meeting uploaded", "")

	o.logger.Info("📥 Meeting created",
		zap.String("meeting_id", m.ID.String()),
		zap.String("user_id", m.UserID),
		zap.String("audio_ref", m.AudioRef),
	)
	return m, nil
}

// StartProcessing claims the meeting and runs every stage synchronously.
// A meeting that is not uploaded is rejected with ErrNotProcessable.
func (o *Orchestrator) StartProcessing(ctx context.Context, meetingID uuid.UUID) (*Result, error) {
	m, err := o.Claim(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return o.Process(ctx, m)
}

// Claim performs the uploaded -> processing compare-and-swap. Exactly one
// of any number of concurrent callers succeeds.
func (o *Orchestrator) Claim(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	m, err := o.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting: %w", err)
	}
	if m == nil {
		return nil, entities.ErrMeetingNotFound
	}
	if m.ProcessingStatus != entities.ProcessingStatusUploaded {
		return nil, fmt.Errorf("%w: status is %s", usecaseErrors.ErrNotProcessable, m.ProcessingStatus)
	}

	at := o.now()
	ok, err := o.meetings.TransitionStatus(ctx, meetingID, entities.StatusChange{
		From: entities.ProcessingStatusUploaded,
		To:   entities.ProcessingStatusProcessing,
		At:   at,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim meeting: %w", err)
	}
	if !ok {
		o.logger.Info("⏭️ Meeting already claimed by another run",
			zap.String("meeting_id", meetingID.String()),
		)
		return nil, fmt.Errorf("%w: claimed by another run", usecaseErrors.ErrNotProcessable)
	}

	m.ProcessingStatus = entities.ProcessingStatusProcessing
	m.ProcessingStartedAt = &at
	o.logger.Info("🔒 Meeting claimed for processing",
		zap.String("meeting_id", meetingID.String()),
	)
	return m, nil
}

// run tracks the stage currently executing so a panic is attributed to it
type run struct {
	meeting *entities.Meeting
	stage   string
	actions []*entities.Action
}

// Process runs the stages of a claimed meeting. Any failure that escapes a
// stage's own fallback moves the meeting to failed and is returned as a
// *ProcessingError.
func (o *Orchestrator) Process(ctx context.Context, m *entities.Meeting) (*Result, error) {
	r := &run{meeting: m, stage: stage.Transcription}
	start := time.Now()

	err := jobcontext.Run(ctx, func(ctx context.Context) error {
		return o.runStages(ctx, r)
	})
	if err != nil {
		var perr *ProcessingError
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, o.Abandon(ctx, m, r.stage, err)
	}

	o.logger.Info("✅ Meeting processed",
		zap.String("meeting_id", m.ID.String()),
		zap.Int("actions", len(r.actions)),
		zap.Float64("confidence", r.meeting.Confidence),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{Meeting: r.meeting, Actions: r.actions}, nil
}

func (o *Orchestrator) runStages(ctx context.Context, r *run) error {
	m := r.meeting
	fields := []zap.Field{zap.String("meeting_id", m.ID.String()), zap.Int("worker_id", jobcontext.GetWorkerID(ctx))}

	// Transcription
	r.stage = stage.Transcription
	ctx = jobcontext.WithStage(ctx, r.stage)
	o.setProgress(ctx, m.ID, entities.ProcessingStageTranscribing, 10, "Transcribing audio", "")

	tr, err := o.transcribe(ctx, m)
	if err != nil {
		return o.Abandon(ctx, m, r.stage, err)
	}
	mode := tr.Mode()
	m, err = o.meetings.UpdateMeeting(ctx, m.ID, entities.MeetingUpdate{
		Transcript:        &tr.Transcript,
		Speakers:          tr.Speakers,
		Language:          &tr.Language,
		Duration:          &tr.Duration,
		TranscriptionMode: &mode,
	})
	if err != nil {
		return o.Abandon(ctx, r.meeting, r.stage, fmt.Errorf("failed to save transcript: %w", err))
	}
	r.meeting = m
	o.logger.Info("📝 Transcription stored", append(fields,
		zap.String("stage", r.stage),
		zap.String("mode", string(mode)),
		zap.Int("duration_min", tr.Duration),
		zap.Int("segments", len(tr.Speakers)),
	)...)

	// Insight extraction
	r.stage = stage.InsightExtraction
	ctx = jobcontext.WithStage(ctx, r.stage)
	o.setProgress(ctx, m.ID, entities.ProcessingStageAnalyzing, 40, "Extracting insights", "")

	insights := o.extractor.Extract(ctx, tr.Transcript, insight.MeetingContext{
		MeetingType:  m.MeetingType,
		Participants: []string(m.Participants),
		Duration:     m.Duration,
		Speakers:     tr.Speakers,
	})
	o.logOutcome(fields, r.stage, insights.Mode(), insights.Reason)
	insightsMode := insights.Mode()
	m, err = o.meetings.UpdateMeeting(ctx, m.ID, entities.MeetingUpdate{
		Insights:     insights.Value,
		InsightsMode: &insightsMode,
		Confidence:   &insights.Value.Confidence,
	})
	if err != nil {
		return o.Abandon(ctx, r.meeting, r.stage, fmt.Errorf("failed to save insights: %w", err))
	}
	r.meeting = m

	// Action planning
	r.stage = stage.ActionPlanning
	ctx = jobcontext.WithStage(ctx, r.stage)
	o.setProgress(ctx, m.ID, entities.ProcessingStagePlanning, 65, "Generating action plan", "")

	plan := o.planner.Plan(ctx, insights.Value, actionplan.UserContext{
		UserID:       m.UserID,
		MeetingTitle: m.Title,
		MeetingType:  m.MeetingType,
	})
	o.logOutcome(fields, r.stage, plan.Mode(), plan.Reason)
	planMode := plan.Mode()
	m, err = o.meetings.UpdateMeeting(ctx, m.ID, entities.MeetingUpdate{
		ActionPlan: plan.Value,
		PlanMode:   &planMode,
	})
	if err != nil {
		return o.Abandon(ctx, r.meeting, r.stage, fmt.Errorf("failed to save action plan: %w", err))
	}
	r.meeting = m

	// Action persistence
	r.stage = stage.ActionPersistence
	ctx = jobcontext.WithStage(ctx, r.stage)
	o.setProgress(ctx, m.ID, entities.ProcessingStageSaving, 85, "Saving actions", "")

	actions := make([]*entities.Action, 0, len(plan.Value.ImmediateActions))
	for _, item := range plan.Value.ImmediateActions {
		actions = append(actions, entities.NewActionFromItem(m, item))
	}

	confidence := insights.Value.Confidence
	ok, err := o.meetings.CompleteMeeting(ctx, m.ID, entities.StatusChange{
		From:       entities.ProcessingStatusProcessing,
		To:         entities.ProcessingStatusCompleted,
		At:         o.now(),
		Confidence: &confidence,
	}, actions)
	if err != nil {
		return o.Abandon(ctx, m, r.stage, fmt.Errorf("failed to store %d actions: %w", len(actions), err))
	}
	if !ok {
		// The stale sweeper already failed the meeting; no action was stored.
		return &ProcessingError{MeetingID: m.ID, Stage: r.stage, Err: entities.ErrInvalidStatusTransition}
	}
	r.actions = actions

	if latest, err := o.meetings.GetMeeting(ctx, m.ID); err == nil && latest != nil {
		r.meeting = latest
	} else {
		m.ProcessingStatus = entities.ProcessingStatusCompleted
		m.Confidence = confidence
	}
	o.setProgress(ctx, m.ID, entities.ProcessingStageCompleted, 100, "Processing complete", "")
	return nil
}

// transcribe runs the adapter and substitutes the mock when allowed
func (o *Orchestrator) transcribe(ctx context.Context, m *entities.Meeting) (*entities.TranscriptionResult, error) {
	tr, err := o.transcriber.Transcribe(ctx, m.AudioRef)
	if err == nil {
		return tr, nil
	}

	var notFound *transcription.MediaNotFoundError
	if !o.mockOnError || errors.As(err, &notFound) {
		return nil, err
	}

	o.logger.Warn("⚠️ Transcription failed, substituting mock transcript",
		zap.String("meeting_id", m.ID.String()),
		zap.Error(err),
	)
	return o.transcriber.Mock(ctx, m.AudioRef)
}

// Abandon moves a processing meeting to failed and wraps cause in a
// ProcessingError. The write outlives a cancelled ctx.
func (o *Orchestrator) Abandon(ctx context.Context, m *entities.Meeting, stageName string, cause error) error {
	perr := &ProcessingError{MeetingID: m.ID, Stage: stageName, Err: cause}
	ctx = context.WithoutCancel(ctx)

	fields := []zap.Field{
		zap.String("meeting_id", m.ID.String()),
		zap.String("stage", stageName),
		zap.Error(cause),
	}
	if md := jobcontext.GetRunMetadata(ctx); !md.StartTime.IsZero() {
		fields = append(fields, zap.Int("worker_id", md.WorkerID), zap.Duration("elapsed", time.Since(md.StartTime)))
	}
	o.logger.Error("❌ Meeting processing failed", fields...)

	ok, err := o.meetings.TransitionStatus(ctx, m.ID, entities.StatusChange{
		From:          entities.ProcessingStatusProcessing,
		To:            entities.ProcessingStatusFailed,
		At:            o.now(),
		FailedStage:   stageName,
		FailureReason: cause.Error(),
	})
	switch {
	case err != nil:
		o.logger.Error("❌ Failed to record meeting failure",
			zap.String("meeting_id", m.ID.String()),
			zap.Error(err),
		)
	case !ok:
		o.logger.Warn("⚠️ Meeting already left processing, failure not recorded",
			zap.String("meeting_id", m.ID.String()),
		)
	default:
		m.ProcessingStatus = entities.ProcessingStatusFailed
	}

	o.setProgress(ctx, m.ID, entities.ProcessingStageFailed, 100, "Processing failed at "+stageName, cause.Error())
	return perr
}

func (o *Orchestrator) logOutcome(fields []zap.Field, stageName string, mode entities.StageMode, reason string) {
	fields = append(fields, zap.String("stage", stageName), zap.String("mode", string(mode)))
	if mode == entities.StageModeDegraded {
		o.logger.Warn("⚠️ Stage degraded to fallback output", append(fields, zap.String("reason", reason))...)
		return
	}
	o.logger.Info("✅ Stage completed", fields...)
}

// GetStatus returns the meeting, its status and its actions
func (o *Orchestrator) GetStatus(ctx context.Context, meetingID uuid.UUID) (*Status, error) {
	m, err := o.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting: %w", err)
	}
	if m == nil {
		return nil, entities.ErrMeetingNotFound
	}
	actions, err := o.actions.ListActions(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	if actions == nil {
		actions = []*entities.Action{}
	}
	return &Status{Status: m.ProcessingStatus, Meeting: m, Actions: actions}, nil
}

// ListMeetings returns a user's meetings, newest first
func (o *Orchestrator) ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entities.Meeting, error) {
	if limit < 1 || limit > 100 {
		return nil, usecaseErrors.ErrInvalidPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return o.meetings.ListMeetings(ctx, userID, limit, offset)
}

// UpdateActionStatus moves a user's action forward
func (o *Orchestrator) UpdateActionStatus(ctx context.Context, userID string, actionID uuid.UUID, status entities.ActionStatus, notes *string) (*entities.Action, error) {
	if status != "" && !status.IsValid() {
		return nil, entities.ErrInvalidActionStatus
	}
	a, err := o.actions.GetAction(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load action: %w", err)
	}
	if a == nil {
		return nil, entities.ErrActionNotFound
	}
	if a.UserID != userID {
		return nil, usecaseErrors.ErrNotActionOwner
	}

	updated, err := o.actions.UpdateAction(ctx, actionID, entities.ActionUpdate{
		Status:              status,
		ImplementationNotes: notes,
		At:                  o.now(),
	})
	if err != nil {
		return nil, err
	}
	o.logger.Info("✅ Action updated",
		zap.String("action_id", actionID.String()),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

// ListUserActions returns a user's actions, highest priority and earliest due first
func (o *Orchestrator) ListUserActions(ctx context.Context, filter entities.ActionFilter) ([]*entities.Action, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, entities.ErrInvalidActionStatus
	}
	return o.actions.ListUserActions(ctx, filter)
}

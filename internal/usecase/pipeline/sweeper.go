package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

const sweepBatch = 100

// Sweeper fails meetings stuck in processing, e.g. after a crash mid-run
type Sweeper struct {
	meetings   repositories.MeetingRepository
	progress   repositories.ProgressStore
	staleAfter time.Duration
	interval   time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewSweeper creates a sweeper. progress may be nil.
func NewSweeper(meetings repositories.MeetingRepository, progress repositories.ProgressStore, cfg *config.PipelineConfig, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sweeper{
		meetings:   meetings,
		progress:   progress,
		staleAfter: 30 * time.Minute,
		interval:   5 * time.Minute,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
	if cfg != nil {
		if cfg.StaleAfter > 0 {
			s.staleAfter = cfg.StaleAfter
		}
		if cfg.SweepInterval > 0 {
			s.interval = cfg.SweepInterval
		}
	}
	return s
}

// Run sweeps every interval until ctx is done
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("🧹 Stale meeting sweeper started",
		zap.Duration("stale_after", s.staleAfter),
		zap.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("🧹 Stale meeting sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("❌ Stale meeting sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce fails every meeting that entered processing more than
// staleAfter ago and reports how many it moved.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.meetings.ListStaleProcessing(ctx, now.Add(-s.staleAfter), sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale meetings: %w", err)
	}

	swept := 0
	for _, m := range stale {
		stageName := s.lastStage(ctx, m)
		reason := fmt.Sprintf("processing exceeded %s without completing", s.staleAfter)

		ok, err := s.meetings.TransitionStatus(ctx, m.ID, entities.StatusChange{
			From:          entities.ProcessingStatusProcessing,
			To:            entities.ProcessingStatusFailed,
			At:            now,
			FailedStage:   stageName,
			FailureReason: reason,
		})
		if err != nil {
			s.logger.Error("❌ Failed to fail stale meeting",
				zap.String("meeting_id", m.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			continue
		}
		swept++

		s.logger.Warn("🧹 Failed stale meeting",
			zap.String("meeting_id", m.ID.String()),
			zap.String("stage", stageName),
			zap.Timep("processing_started_at", m.ProcessingStartedAt),
		)
		if s.progress != nil {
			_ = s.progress.SetProgress(ctx, entities.ProcessingProgress{
				MeetingID: m.ID,
				Stage:     entities.ProcessingStageFailed,
				Progress:  100,
				Message:   "Processing failed at " + stageName,
				Error:     reason,
				UpdatedAt: now,
			})
		}
	}
	return swept, nil
}

func (s *Sweeper) lastStage(ctx context.Context, m *entities.Meeting) string {
	if s.progress == nil {
		return stageFor("")
	}
	p, err := s.progress.GetProgress(ctx, m.ID)
	if err != nil {
		return stageFor("")
	}
	return stageFor(p.Stage)
}

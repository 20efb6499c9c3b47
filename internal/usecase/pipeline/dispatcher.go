package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/internal/usecase/stage"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

// Dispatcher runs claimed meetings on a fixed pool of workers
type Dispatcher struct {
	orch    *Orchestrator
	queue   chan *entities.Meeting
	workers int
	logger  *zap.Logger

	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewDispatcher creates a stopped dispatcher
func NewDispatcher(orch *Orchestrator, cfg *config.PipelineConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers, size := 4, 64
	if cfg != nil {
		if cfg.Workers > 0 {
			workers = cfg.Workers
		}
		if cfg.QueueSize > 0 {
			size = cfg.QueueSize
		}
	}
	return &Dispatcher{
		orch:    orch,
		queue:   make(chan *entities.Meeting, size),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the workers. Runs use ctx as their parent.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("dispatcher already running")
	}
	d.running = true
	d.stopChan = make(chan struct{})

	d.logger.Info("🚀 Starting pipeline workers",
		zap.Int("worker_count", d.workers),
		zap.Int("queue_size", cap(d.queue)),
	)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
	return nil
}

// Stop waits for in-flight runs and fails meetings still queued
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return fmt.Errorf("dispatcher not running")
	}
	d.logger.Info("🛑 Stopping pipeline workers...")

	close(d.stopChan)
	d.wg.Wait()
	d.running = false

	for {
		select {
		case m := <-d.queue:
			d.orch.Abandon(context.Background(), m, stage.Transcription, usecaseErrors.ErrDispatcherStopped)
		default:
			d.logger.Info("✅ Pipeline workers stopped")
			return nil
		}
	}
}

// Enqueue claims the meeting synchronously, so duplicates are rejected
// exactly as StartProcessing rejects them, and hands the run to a worker.
// The read lock is held until the meeting is queued so Stop cannot drain
// the queue underneath a send.
func (d *Dispatcher) Enqueue(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.running {
		return nil, usecaseErrors.ErrDispatcherStopped
	}
	if len(d.queue) >= cap(d.queue) {
		return nil, usecaseErrors.ErrQueueFull
	}

	m, err := d.orch.Claim(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	select {
	case d.queue <- m:
		d.logger.Info("📬 Meeting queued for processing",
			zap.String("meeting_id", meetingID.String()),
			zap.Int("queued", len(d.queue)),
		)
		return m, nil
	default:
		// Another Enqueue filled the last slot after the length check.
		return nil, d.orch.Abandon(ctx, m, stage.Transcription, usecaseErrors.ErrQueueFull)
	}
}

func (d *Dispatcher) worker(parentCtx context.Context, workerID int) {
	defer d.wg.Done()

	d.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	for {
		select {
		case <-d.stopChan:
			d.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
			return
		case m := <-d.queue:
			runCtx, cancel := jobcontext.RunBegin(parentCtx, m.ID, workerID, 0)
			_, err := d.orch.Process(runCtx, m)
			cancel()

			var perr *ProcessingError
			if errors.As(err, &perr) {
				d.logger.Warn("👷 Worker finished with failure",
					zap.Int("worker_id", workerID),
					zap.String("meeting_id", m.ID.String()),
					zap.String("stage", perr.Stage),
				)
			}
		}
	}
}

// Package transcription turns a stored recording into a transcript with
// speaker segments.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Backend is the remote speech-to-text service
type Backend interface {
	Upload(ctx context.Context, media io.Reader) (string, error)
	StartJob(ctx context.Context, uploadURL string) (string, error)
	Poll(ctx context.Context, jobID string) (*ai.TranscriptJob, error)
}

// MediaSource resolves an audio reference to a readable local file.
// Open returns entities.ErrMediaNotFound when the reference does not exist.
type MediaSource interface {
	Open(ctx context.Context, ref string) (path string, cleanup func(), err error)
}

var errJobPending = errors.New("transcription job still pending")

// Transcriber selects between the remote backend and the mock transcript.
// The choice is made once at construction; a nil backend means mock mode.
type Transcriber struct {
	backend  Backend
	media    MediaSource
	prober   DurationProber
	attempts int
	interval time.Duration
	language string
	logger   *zap.Logger
}

// NewTranscriber wires the adapter. cfg supplies the poll bound and language.
func NewTranscriber(backend Backend, media MediaSource, prober DurationProber, cfg *config.TranscriptionConfig, logger *zap.Logger) *Transcriber {
	t := &Transcriber{
		backend:  backend,
		media:    media,
		prober:   prober,
		attempts: 60,
		interval: 10 * time.Second,
		language: "en",
		logger:   logger,
	}
	if cfg != nil {
		if cfg.PollAttempts > 0 {
			t.attempts = cfg.PollAttempts
		}
		if cfg.PollInterval > 0 {
			t.interval = cfg.PollInterval
		}
		if cfg.LanguageCode != "" {
			t.language = cfg.LanguageCode
		}
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	if t.prober == nil {
		t.prober = NewFFProbe("", t.logger)
	}

	if t.backend == nil {
		t.logger.Info("⚠️ No transcription API key configured, transcripts will use mock data")
	} else {
		t.logger.Info("🎙️ Transcription backend enabled",
			zap.Int("poll_attempts", t.attempts),
			zap.Duration("poll_interval", t.interval),
		)
	}
	return t
}

// Mode reports which path Transcribe takes
func (t *Transcriber) Mode() entities.TranscriptionSource {
	if t.backend == nil {
		return entities.TranscriptionSourceMock
	}
	return entities.TranscriptionSourceAssemblyAI
}

// Transcribe resolves audioRef and transcribes it. The mock path never
// fails once the media exists.
func (t *Transcriber) Transcribe(ctx context.Context, audioRef string) (*entities.TranscriptionResult, error) {
	path, cleanup, err := t.open(ctx, audioRef)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	duration := t.prober.Minutes(ctx, path)
	t.logger.Info("📏 Audio duration probed", zap.String("audio_ref", audioRef), zap.Int("minutes", duration))

	if t.backend == nil {
		return MockResult(duration), nil
	}
	return t.transcribeRemote(ctx, path, duration)
}

// Mock returns the mock transcript for audioRef, probing its duration.
// Callers use it to substitute a failed remote transcription.
func (t *Transcriber) Mock(ctx context.Context, audioRef string) (*entities.TranscriptionResult, error) {
	path, cleanup, err := t.open(ctx, audioRef)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return MockResult(t.prober.Minutes(ctx, path)), nil
}

func (t *Transcriber) open(ctx context.Context, audioRef string) (string, func(), error) {
	if t.media == nil {
		return "", nil, &MediaNotFoundError{Ref: audioRef, Err: entities.ErrMediaNotFound}
	}
	path, cleanup, err := t.media.Open(ctx, audioRef)
	if err != nil {
		if errors.Is(err, entities.ErrMediaNotFound) {
			return "", nil, &MediaNotFoundError{Ref: audioRef, Err: err}
		}
		return "", nil, fmt.Errorf("open media %s: %w", audioRef, err)
	}
	if cleanup == nil {
		cleanup = func() {}
	}
	return path, cleanup, nil
}

func (t *Transcriber) transcribeRemote(ctx context.Context, path string, probed int) (*entities.TranscriptionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MediaNotFoundError{Ref: path, Err: entities.ErrMediaNotFound}
		}
		return nil, fmt.Errorf("read media: %w", err)
	}
	defer f.Close()

	t.logger.Info("📤 Uploading audio to transcription service", zap.String("path", path))
	uploadURL, err := t.backend.Upload(ctx, f)
	if err != nil {
		return nil, &ServiceError{Op: "upload", Err: err}
	}

	jobID, err := t.backend.StartJob(ctx, uploadURL)
	if err != nil {
		return nil, &ServiceError{Op: "submit", Err: err}
	}
	t.logger.Info("⏳ Transcription started, polling for completion", zap.String("job_id", jobID))

	job, err := t.poll(ctx, jobID)
	if err != nil {
		return nil, err
	}
	t.logger.Info("✅ Transcription completed",
		zap.String("job_id", jobID),
		zap.Int("utterances", len(job.Utterances)),
	)
	return t.toResult(job, probed), nil
}

// poll checks the job at a fixed interval, at most t.attempts times
func (t *Transcriber) poll(ctx context.Context, jobID string) (*ai.TranscriptJob, error) {
	var done *ai.TranscriptJob
	operation := func() error {
		job, err := t.backend.Poll(ctx, jobID)
		if err != nil {
			return backoff.Permanent(&ServiceError{Op: "poll", Err: err})
		}
		switch job.State {
		case ai.TranscriptCompleted:
			done = job
			return nil
		case ai.TranscriptError:
			return backoff.Permanent(&ServiceError{Op: "transcribe", Err: errors.New(job.Error)})
		default:
			return errJobPending
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(t.interval), uint64(t.attempts-1)),
		ctx,
	)
	err := backoff.Retry(operation, policy)
	switch {
	case err == nil:
		return done, nil
	case errors.Is(err, errJobPending), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return nil, &TimeoutError{JobID: jobID, Attempts: t.attempts, Interval: t.interval, Err: err}
	default:
		return nil, err
	}
}

func (t *Transcriber) toResult(job *ai.TranscriptJob, probed int) *entities.TranscriptionResult {
	speakers := make([]entities.SpeakerSegment, 0, len(job.Utterances))
	for _, u := range job.Utterances {
		confidence := u.Confidence
		if confidence == 0 {
			confidence = 0.9
		}
		speakers = append(speakers, entities.SpeakerSegment{
			Speaker:    "Speaker " + u.Speaker,
			Text:       u.Text,
			Start:      float64(u.StartMs) / 1000,
			End:        float64(u.EndMs) / 1000,
			Confidence: confidence,
		})
	}

	duration := probed
	if job.AudioDurationSec > 0 {
		duration = int(math.Ceil(job.AudioDurationSec / 60))
	}
	confidence := job.Confidence
	if confidence == 0 {
		confidence = 0.9
	}

	return &entities.TranscriptionResult{
		Transcript: job.Text,
		Speakers:   speakers,
		Duration:   duration,
		Confidence: confidence,
		Language:   t.language,
		Source:     entities.TranscriptionSourceAssemblyAI,
	}
}

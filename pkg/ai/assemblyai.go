package ai

import (
	"context"
	"fmt"
	"io"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// TranscriptState is the lifecycle state of a remote transcription job
type TranscriptState string

const (
	TranscriptQueued     TranscriptState = "queued"
	TranscriptProcessing TranscriptState = "processing"
	TranscriptCompleted  TranscriptState = "completed"
	TranscriptError      TranscriptState = "error"
)

// Utterance is one speaker turn returned by the speech service
type Utterance struct {
	Speaker    string
	Text       string
	StartMs    int64
	EndMs      int64
	Confidence float64
}

// TranscriptJob is a snapshot of a remote transcription job
type TranscriptJob struct {
	ID               string
	State            TranscriptState
	Text             string
	Utterances       []Utterance
	AudioDurationSec float64
	Confidence       float64
	Error            string
}

// AssemblyAIClient wraps the official AssemblyAI SDK
type AssemblyAIClient struct {
	client       *aai.Client
	languageCode string
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config
func NewAssemblyAIClient(cfg *config.TranscriptionConfig) *AssemblyAIClient {
	opts := []aai.ClientOption{aai.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, aai.WithBaseURL(cfg.BaseURL))
	}
	return &AssemblyAIClient{
		client:       aai.NewClientWithOptions(opts...),
		languageCode: cfg.LanguageCode,
	}
}

// Upload streams media to AssemblyAI and returns the private upload URL
func (c *AssemblyAIClient) Upload(ctx context.Context, media io.Reader) (string, error) {
	uploadURL, err := c.client.Upload(ctx, media)
	if err != nil {
		return "", fmt.Errorf("upload to assemblyai: %w", err)
	}
	return uploadURL, nil
}

// StartJob submits a transcription job for an uploaded file
func (c *AssemblyAIClient) StartJob(ctx context.Context, uploadURL string) (string, error) {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
		Punctuate:     aai.Bool(true),
		FormatText:    aai.Bool(true),
	}
	if c.languageCode != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(c.languageCode)
	}

	transcript, err := c.client.Transcripts.SubmitFromURL(ctx, uploadURL, params)
	if err != nil {
		return "", fmt.Errorf("submit transcript: %w", err)
	}
	if transcript.ID == nil || *transcript.ID == "" {
		return "", fmt.Errorf("submit transcript: missing job id")
	}
	return *transcript.ID, nil
}

// Poll fetches the current state of a transcription job
func (c *AssemblyAIClient) Poll(ctx context.Context, jobID string) (*TranscriptJob, error) {
	transcript, err := c.client.Transcripts.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get transcript %s: %w", jobID, err)
	}
	return toTranscriptJob(jobID, transcript), nil
}

func toTranscriptJob(jobID string, t aai.Transcript) *TranscriptJob {
	job := &TranscriptJob{ID: jobID}

	switch t.Status {
	case aai.TranscriptStatusCompleted:
		job.State = TranscriptCompleted
	case aai.TranscriptStatusError:
		job.State = TranscriptError
	case aai.TranscriptStatusQueued:
		job.State = TranscriptQueued
	default:
		job.State = TranscriptProcessing
	}

	if t.Text != nil {
		job.Text = *t.Text
	}
	if t.Error != nil {
		job.Error = *t.Error
	}
	if t.Confidence != nil {
		job.Confidence = *t.Confidence
	}
	if t.AudioDuration != nil {
		job.AudioDurationSec = float64(*t.AudioDuration)
	}

	for _, utt := range t.Utterances {
		u := Utterance{}
		if utt.Speaker != nil {
			u.Speaker = *utt.Speaker
		}
		if utt.Text != nil {
			u.Text = *utt.Text
		}
		if utt.Start != nil {
			u.StartMs = int64(*utt.Start)
		}
		if utt.End != nil {
			u.EndMs = int64(*utt.End)
		}
		if utt.Confidence != nil {
			u.Confidence = *utt.Confidence
		}
		job.Utterances = append(job.Utterances, u)
	}
	return job
}

package transcription

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

type dirMedia struct {
	dir string
}

func (m dirMedia) Open(ctx context.Context, ref string) (string, func(), error) {
	path := filepath.Join(m.dir, ref)
	if _, err := os.Stat(path); err != nil {
		return "", nil, entities.ErrMediaNotFound
	}
	return path, func() {}, nil
}

type fixedProbe int

func (p fixedProbe) Minutes(ctx context.Context, path string) int { return int(p) }

type fakeBackend struct {
	uploadErr error
	startErr  error
	pollErr   error
	states    []*ai.TranscriptJob
	polls     int
	uploaded  []byte
}

func (f *fakeBackend) Upload(ctx context.Context, media io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	b, err := io.ReadAll(media)
	f.uploaded = b
	return "https://cdn.test/upload/1", err
}

func (f *fakeBackend) StartJob(ctx context.Context, uploadURL string) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return "job-1", nil
}

func (f *fakeBackend) Poll(ctx context.Context, jobID string) (*ai.TranscriptJob, error) {
	f.polls++
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	i := f.polls - 1
	if i >= len(f.states) {
		i = len(f.states) - 1
	}
	return f.states[i], nil
}

func newFixture(t *testing.T, backend Backend) *Transcriber {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "session.mp3"), []byte("ID3 audio"), 0o600); err != nil {
		t.Fatalf("write media: %v", err)
	}
	cfg := &config.TranscriptionConfig{PollAttempts: 3, PollInterval: time.Millisecond, LanguageCode: "en"}
	return NewTranscriber(backend, dirMedia{dir: dir}, fixedProbe(7), cfg, nil)
}

func TestTranscribe_MockMode(t *testing.T) {
	tr := newFixture(t, nil)
	if tr.Mode() != entities.TranscriptionSourceMock {
		t.Fatalf("expected mock mode, got %s", tr.Mode())
	}
	res, err := tr.Transcribe(context.Background(), "session.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Duration != 7 || res.Confidence != 0.95 || res.Language != "en" {
		t.Fatalf("unexpected mock result %+v", res)
	}
	if len(res.Speakers) != 2 || res.Speakers[0].Speaker != "Sarah (Mentor)" {
		t.Fatalf("unexpected speakers %+v", res.Speakers)
	}
	if res.Mode() != entities.StageModeDegraded {
		t.Fatal("mock transcripts must report degraded mode")
	}
}

func TestTranscribe_MediaNotFound(t *testing.T) {
	for _, backend := range []Backend{nil, &fakeBackend{}} {
		tr := newFixture(t, backend)
		_, err := tr.Transcribe(context.Background(), "missing.mp3")
		var notFound *MediaNotFoundError
		if !errors.As(err, &notFound) || notFound.Ref != "missing.mp3" {
			t.Fatalf("expected MediaNotFoundError, got %v", err)
		}
		if !errors.Is(err, entities.ErrMediaNotFound) {
			t.Fatal("MediaNotFoundError must unwrap to the domain sentinel")
		}
	}
}

func TestTranscribe_RemoteCompletes(t *testing.T) {
	backend := &fakeBackend{states: []*ai.TranscriptJob{
		{ID: "job-1", State: ai.TranscriptQueued},
		{ID: "job-1", State: ai.TranscriptProcessing},
		{
			ID:               "job-1",
			State:            ai.TranscriptCompleted,
			Text:             "hello there",
			AudioDurationSec: 61,
			Confidence:       0.93,
			Utterances: []ai.Utterance{
				{Speaker: "A", Text: "hello", StartMs: 1500, EndMs: 2500, Confidence: 0.91},
				{Speaker: "B", Text: "there", StartMs: 3000, EndMs: 3500},
			},
		},
	}}
	tr := newFixture(t, backend)

	res, err := tr.Transcribe(context.Background(), "session.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.polls != 3 || string(backend.uploaded) != "ID3 audio" {
		t.Fatalf("unexpected backend usage: polls=%d uploaded=%q", backend.polls, backend.uploaded)
	}
	if res.Source != entities.TranscriptionSourceAssemblyAI || res.Duration != 2 || res.Confidence != 0.93 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Speakers[0].Speaker != "Speaker A" || res.Speakers[0].Start != 1.5 || res.Speakers[1].Confidence != 0.9 {
		t.Fatalf("unexpected segments %+v", res.Speakers)
	}
}

func TestTranscribe_Timeout(t *testing.T) {
	backend := &fakeBackend{states: []*ai.TranscriptJob{{ID: "job-1", State: ai.TranscriptProcessing}}}
	tr := newFixture(t, backend)

	_, err := tr.Transcribe(context.Background(), "session.mp3")
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if backend.polls != 3 || timeout.Attempts != 3 {
		t.Fatalf("expected exactly 3 polls, got %d", backend.polls)
	}
}

func TestTranscribe_ServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		op      string
	}{
		{"upload", &fakeBackend{uploadErr: errors.New("401 unauthorized")}, "upload"},
		{"submit", &fakeBackend{startErr: errors.New("400 bad request")}, "submit"},
		{"poll", &fakeBackend{pollErr: errors.New("500 internal")}, "poll"},
		{"job error", &fakeBackend{states: []*ai.TranscriptJob{{State: ai.TranscriptError, Error: "unsupported codec"}}}, "transcribe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newFixture(t, tt.backend)
			_, err := tr.Transcribe(context.Background(), "session.mp3")
			var svc *ServiceError
			if !errors.As(err, &svc) || svc.Op != tt.op {
				t.Fatalf("expected ServiceError(%s), got %v", tt.op, err)
			}
			if tt.op == "poll" && tt.backend.polls != 1 {
				t.Fatalf("service errors must not be retried, got %d polls", tt.backend.polls)
			}
		})
	}
}

func TestMock_ProbesDuration(t *testing.T) {
	tr := newFixture(t, &fakeBackend{})
	res, err := tr.Mock(context.Background(), "session.mp3")
	if err != nil || res.Duration != 7 || res.Source != entities.TranscriptionSourceMock {
		t.Fatalf("unexpected mock %+v %v", res, err)
	}
}

func TestFFProbe_MissingBinaryUsesDefault(t *testing.T) {
	p := NewFFProbe(filepath.Join(t.TempDir(), "no-ffprobe"), nil)
	if got := p.Minutes(context.Background(), "/nowhere.mp3"); got != DefaultDurationMinutes {
		t.Fatalf("expected default duration, got %d", got)
	}
}

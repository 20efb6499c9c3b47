package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func newAssemblyAIServer(t *testing.T, transcript map[string]interface{}) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/v2/upload"):
			body, _ := io.ReadAll(r.Body)
			if string(body) != "fake-audio" {
				t.Errorf("unexpected upload body %q", body)
			}
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.test/upload/1"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/v2/transcript"):
			var payload map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("invalid payload: %v", err)
			}
			if payload["audio_url"] != "https://cdn.test/upload/1" || payload["speaker_labels"] != true {
				t.Errorf("unexpected submit payload: %v", payload)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "transcript-123", "status": "queued"})
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/v2/transcript/transcript-123"):
			json.NewEncoder(w).Encode(transcript)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestAssemblyAIClient_UploadSubmitPoll(t *testing.T) {
	ts := newAssemblyAIServer(t, map[string]interface{}{
		"id":             "transcript-123",
		"status":         "completed",
		"text":           "Hello there. Hi.",
		"confidence":     0.93,
		"audio_duration": 125,
		"utterances": []map[string]interface{}{
			{"speaker": "A", "text": "Hello there.", "start": 0, "end": 1500, "confidence": 0.95},
			{"speaker": "B", "text": "Hi.", "start": 1600, "end": 2000, "confidence": 0.91},
		},
	})

	client := NewAssemblyAIClient(&config.TranscriptionConfig{APIKey: "test-key", BaseURL: ts.URL, LanguageCode: "en"})
	ctx := context.Background()

	uploadURL, err := client.Upload(ctx, strings.NewReader("fake-audio"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	jobID, err := client.StartJob(ctx, uploadURL)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if jobID != "transcript-123" {
		t.Fatalf("unexpected id %s", jobID)
	}

	job, err := client.Poll(ctx, jobID)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if job.State != TranscriptCompleted || job.Text != "Hello there. Hi." {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.AudioDurationSec != 125 || len(job.Utterances) != 2 {
		t.Fatalf("unexpected duration/utterances: %+v", job)
	}
	if job.Utterances[1].Speaker != "B" || job.Utterances[1].StartMs != 1600 {
		t.Fatalf("unexpected utterance: %+v", job.Utterances[1])
	}
}

func TestAssemblyAIClient_PollError(t *testing.T) {
	ts := newAssemblyAIServer(t, map[string]interface{}{
		"id":     "transcript-123",
		"status": "error",
		"error":  "audio too short",
	})

	client := NewAssemblyAIClient(&config.TranscriptionConfig{APIKey: "test-key", BaseURL: ts.URL})
	job, err := client.Poll(context.Background(), "transcript-123")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if job.State != TranscriptError || job.Error != "audio too short" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

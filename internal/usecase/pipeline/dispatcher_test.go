package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/internal/usecase/stage"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func waitForStatus(t *testing.T, f *fixture, m *entities.Meeting, want entities.ProcessingStatus) *entities.Meeting {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, err := f.repo.GetMeeting(context.Background(), m.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ProcessingStatus == want {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("meeting %s never reached %s", m.ID, want)
	return nil
}

func TestDispatcher_RunsQueuedMeetings(t *testing.T) {
	f := newFixture(t, nil)
	d := NewDispatcher(f.orch, &config.PipelineConfig{Workers: 2, QueueSize: 4}, nil)

	if _, err := d.Enqueue(context.Background(), f.create(t).ID); !errors.Is(err, usecaseErrors.ErrDispatcherStopped) {
		t.Fatalf("expected stopped dispatcher to reject, got %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second start should fail")
	}

	var meetings []*entities.Meeting
	for i := 0; i < 3; i++ {
		m := f.create(t)
		claimed, err := d.Enqueue(context.Background(), m.ID)
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		if claimed.ProcessingStatus != entities.ProcessingStatusProcessing {
			t.Fatalf("enqueue must claim synchronously, got %s", claimed.ProcessingStatus)
		}
		meetings = append(meetings, m)
	}

	if _, err := d.Enqueue(context.Background(), meetings[0].ID); !errors.Is(err, usecaseErrors.ErrNotProcessable) {
		t.Fatalf("expected duplicate rejected, got %v", err)
	}

	for _, m := range meetings {
		got := waitForStatus(t, f, m, entities.ProcessingStatusCompleted)
		actions, _ := f.repo.ListActions(context.Background(), got.ID)
		if len(actions) != len(got.ActionPlan.ImmediateActions) {
			t.Fatalf("expected one action set, got %d", len(actions))
		}
	}

	if err := d.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := d.Stop(); err == nil {
		t.Fatal("second stop should fail")
	}
}

func TestDispatcher_QueueFullDoesNotClaim(t *testing.T) {
	f := newFixture(t, nil)
	d := NewDispatcher(f.orch, &config.PipelineConfig{Workers: 1, QueueSize: 1}, nil)

	// Mark running without workers so the queue never drains.
	d.running = true
	d.stopChan = make(chan struct{})

	first := f.create(t)
	if _, err := d.Enqueue(context.Background(), first.ID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	second := f.create(t)
	if _, err := d.Enqueue(context.Background(), second.ID); !errors.Is(err, usecaseErrors.ErrQueueFull) {
		t.Fatalf("expected queue full, got %v", err)
	}
	got, _ := f.repo.GetMeeting(context.Background(), second.ID)
	if got.ProcessingStatus != entities.ProcessingStatusUploaded {
		t.Fatalf("rejected meeting must stay uploaded, got %s", got.ProcessingStatus)
	}

	if err := d.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	got = waitForStatus(t, f, first, entities.ProcessingStatusFailed)
	if got.FailedStage == nil || *got.FailedStage != stage.Transcription {
		t.Fatalf("queued meeting should be failed on stop, got %+v", got.FailedStage)
	}
}

func TestDispatcher_StopDuringEnqueueLeavesNothingProcessing(t *testing.T) {
	f := newFixture(t, nil)
	d := NewDispatcher(f.orch, &config.PipelineConfig{Workers: 1, QueueSize: 16}, nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	var meetings []*entities.Meeting
	for i := 0; i < 12; i++ {
		meetings = append(meetings, f.create(t))
	}

	var wg sync.WaitGroup
	for _, m := range meetings {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, _ = d.Enqueue(context.Background(), id)
		}(m.ID)
	}
	if err := d.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	wg.Wait()

	for _, m := range meetings {
		got, err := f.repo.GetMeeting(context.Background(), m.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ProcessingStatus == entities.ProcessingStatusProcessing {
			t.Fatalf("meeting %s left in processing after stop", m.ID)
		}
	}
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func TestMemoryProgressStore_SetGet(t *testing.T) {
	store := NewMemoryProgressStore(time.Hour)
	defer store.Close()
	ctx := context.Background()
	id := uuid.New()

	if _, err := store.GetProgress(ctx, id); !errors.Is(err, entities.ErrProgressNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	store.SetProgress(ctx, entities.ProcessingProgress{MeetingID: id, Stage: entities.ProcessingStageTranscribing, Progress: 10})
	store.SetProgress(ctx, entities.ProcessingProgress{MeetingID: id, Stage: entities.ProcessingStageAnalyzing, Progress: 40})

	got, err := store.GetProgress(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stage != entities.ProcessingStageAnalyzing || got.Progress != 40 {
		t.Fatalf("expected latest snapshot, got %+v", got)
	}
}

func TestMemoryProgressStore_Expiry(t *testing.T) {
	store := NewMemoryProgressStore(time.Millisecond)
	defer store.Close()
	ctx := context.Background()
	id := uuid.New()

	store.SetProgress(ctx, entities.ProcessingProgress{MeetingID: id, Stage: entities.ProcessingStageSaving})
	time.Sleep(5 * time.Millisecond)

	if _, err := store.GetProgress(ctx, id); !errors.Is(err, entities.ErrProgressNotFound) {
		t.Fatalf("expected expired entry, got %v", err)
	}
	store.removeExpired(time.Now())
	store.mu.RLock()
	n := len(store.items)
	store.mu.RUnlock()
	if n != 0 {
		t.Fatalf("expected cleanup to drop the entry, %d left", n)
	}
}

func TestMemoryProgressStore_Subscribe(t *testing.T) {
	store := NewMemoryProgressStore(time.Hour)
	defer store.Close()
	id := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := store.Subscribe(ctx, id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	store.SetProgress(context.Background(), entities.ProcessingProgress{MeetingID: uuid.New(), Stage: entities.ProcessingStagePlanning})
	store.SetProgress(context.Background(), entities.ProcessingProgress{MeetingID: id, Stage: entities.ProcessingStageCompleted, Progress: 100})

	select {
	case p := <-events:
		if p.MeetingID != id || p.Stage != entities.ProcessingStageCompleted {
			t.Fatalf("unexpected event %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected channel closed after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestProgressKeys(t *testing.T) {
	id := uuid.MustParse("7f9c2ba4-e88f-4b6a-9a2b-1d0c8a2e4f10")
	if got := ProgressChannel(id); got != "meeting-progress:7f9c2ba4-e88f-4b6a-9a2b-1d0c8a2e4f10" {
		t.Fatalf("unexpected channel %q", got)
	}
	if got := ProgressKey(id); got != "meeting:progress:7f9c2ba4-e88f-4b6a-9a2b-1d0c8a2e4f10" {
		t.Fatalf("unexpected key %q", got)
	}
}

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MemoryProgressStore is an in-process ProgressStore with expiration
type MemoryProgressStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*memoryItem
	ttl   time.Duration
	subs  map[uuid.UUID]map[chan entities.ProcessingProgress]struct{}
	stop  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      entities.ProcessingProgress
	expireTime time.Time
}

// NewMemoryProgressStore creates a store whose entries live for ttl
func NewMemoryProgressStore(ttl time.Duration) *MemoryProgressStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	store := &MemoryProgressStore{
		items: make(map[uuid.UUID]*memoryItem),
		ttl:   ttl,
		subs:  make(map[uuid.UUID]map[chan entities.ProcessingProgress]struct{}),
		stop:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired(5 * time.Minute)

	return store
}

// SetProgress overwrites the snapshot of progress.MeetingID
func (ms *MemoryProgressStore) SetProgress(ctx context.Context, progress entities.ProcessingProgress) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[progress.MeetingID] = &memoryItem{
		value:      progress,
		expireTime: time.Now().Add(ms.ttl),
	}

	// Slow subscribers miss intermediate snapshots rather than block writers
	for ch := range ms.subs[progress.MeetingID] {
		select {
		case ch <- progress:
		default:
		}
	}
	return nil
}

// Subscribe streams snapshots written for the meeting until ctx is done
func (ms *MemoryProgressStore) Subscribe(ctx context.Context, meetingID uuid.UUID) (<-chan entities.ProcessingProgress, error) {
	ch := make(chan entities.ProcessingProgress, 8)

	ms.mu.Lock()
	if ms.subs[meetingID] == nil {
		ms.subs[meetingID] = make(map[chan entities.ProcessingProgress]struct{})
	}
	ms.subs[meetingID][ch] = struct{}{}
	ms.mu.Unlock()

	go func() {
		<-ctx.Done()
		ms.mu.Lock()
		delete(ms.subs[meetingID], ch)
		if len(ms.subs[meetingID]) == 0 {
			delete(ms.subs, meetingID)
		}
		close(ch)
		ms.mu.Unlock()
	}()
	return ch, nil
}

// GetProgress returns entities.ErrProgressNotFound when missing or expired
func (ms *MemoryProgressStore) GetProgress(ctx context.Context, meetingID uuid.UUID) (*entities.ProcessingProgress, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[meetingID]
	if !exists || time.Now().After(item.expireTime) {
		return nil, entities.ErrProgressNotFound
	}

	out := item.value
	return &out, nil
}

// Close stops the cleanup goroutine
func (ms *MemoryProgressStore) Close() {
	ms.once.Do(func() { close(ms.stop) })
}

// cleanupExpired periodically removes expired items
func (ms *MemoryProgressStore) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.removeExpired(time.Now())
		}
	}
}

func (ms *MemoryProgressStore) removeExpired(now time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for key, item := range ms.items {
		if now.After(item.expireTime) {
			delete(ms.items, key)
		}
	}
}

package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MemoryRepository is an in-process meeting and action store. It backs
// headless runs and tests and gives the same atomicity as the SQL store.
type MemoryRepository struct {
	mu       sync.RWMutex
	meetings map[uuid.UUID]*entities.Meeting
	actions  map[uuid.UUID]*entities.Action
	order    []uuid.UUID // action insertion order
}

// NewMemoryRepository creates an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		meetings: make(map[uuid.UUID]*entities.Meeting),
		actions:  make(map[uuid.UUID]*entities.Action),
	}
}

// CreateMeeting stores a copy of meeting
func (r *MemoryRepository) CreateMeeting(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}
	if _, exists := r.meetings[meeting.ID]; exists {
		return errors.New("meeting already exists")
	}
	if meeting.ProcessingStatus == "" {
		meeting.ProcessingStatus = entities.ProcessingStatusUploaded
	}
	now := time.Now().UTC()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now

	stored := *meeting
	r.meetings[meeting.ID] = &stored
	return nil
}

// GetMeeting returns a copy of the meeting or nil
func (r *MemoryRepository) GetMeeting(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meeting, ok := r.meetings[id]
	if !ok {
		return nil, nil
	}
	out := *meeting
	return &out, nil
}

// UpdateMeeting applies content fields under the store lock
func (r *MemoryRepository) UpdateMeeting(ctx context.Context, id uuid.UUID, update entities.MeetingUpdate) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	meeting, ok := r.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	if meeting.ProcessingStatus != entities.ProcessingStatusProcessing {
		return nil, entities.ErrInvalidStatusTransition
	}
	update.Apply(meeting)
	meeting.UpdatedAt = time.Now().UTC()

	out := *meeting
	return &out, nil
}

// TransitionStatus compares and swaps the processing status
func (r *MemoryRepository) TransitionStatus(ctx context.Context, id uuid.UUID, change entities.StatusChange) (bool, error) {
	if !change.From.CanTransitionTo(change.To) {
		return false, entities.ErrInvalidStatusTransition
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	meeting, ok := r.meetings[id]
	if !ok || meeting.ProcessingStatus != change.From {
		return false, nil
	}
	change.Apply(meeting)
	meeting.UpdatedAt = change.At
	return true, nil
}

// CompleteMeeting stores the actions and swaps the status under one lock
func (r *MemoryRepository) CompleteMeeting(ctx context.Context, id uuid.UUID, change entities.StatusChange, actions []*entities.Action) (bool, error) {
	if !change.From.CanTransitionTo(change.To) {
		return false, entities.ErrInvalidStatusTransition
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	for _, a := range actions {
		if a == nil {
			return false, errors.New("action cannot be nil")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	meeting, ok := r.meetings[id]
	if !ok || meeting.ProcessingStatus != change.From {
		return false, nil
	}
	change.Apply(meeting)
	meeting.UpdatedAt = change.At
	for _, a := range actions {
		r.storeAction(a)
	}
	return true, nil
}

// ListMeetings returns a user's meetings, newest first
func (r *MemoryRepository) ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entities.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Meeting, 0)
	for _, m := range r.meetings {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

// ListStaleProcessing returns meetings processing since before the cutoff
func (r *MemoryRepository) ListStaleProcessing(ctx context.Context, before time.Time, limit int) ([]*entities.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Meeting, 0)
	for _, m := range r.meetings {
		if m.ProcessingStatus != entities.ProcessingStatusProcessing || m.ProcessingStartedAt == nil {
			continue
		}
		if m.ProcessingStartedAt.Before(before) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessingStartedAt.Before(*out[j].ProcessingStartedAt) })
	return paginate(out, limit, 0), nil
}

// CreateAction stores a copy of action
func (r *MemoryRepository) CreateAction(ctx context.Context, action *entities.Action) error {
	if action == nil {
		return errors.New("action cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.storeAction(action)
	return nil
}

// storeAction fills defaults and stores a copy; r.mu must be held
func (r *MemoryRepository) storeAction(action *entities.Action) {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	if action.Status == "" {
		action.Status = entities.ActionStatusPending
	}
	now := time.Now().UTC()
	action.CreatedAt = now
	action.UpdatedAt = now

	stored := *action
	r.actions[action.ID] = &stored
	r.order = append(r.order, action.ID)
}

// GetAction returns a copy of the action or nil
func (r *MemoryRepository) GetAction(ctx context.Context, id uuid.UUID) (*entities.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, ok := r.actions[id]
	if !ok {
		return nil, nil
	}
	out := *action
	return &out, nil
}

// ListActions returns a meeting's actions in creation order
func (r *MemoryRepository) ListActions(ctx context.Context, meetingID uuid.UUID) ([]*entities.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Action, 0)
	for _, id := range r.order {
		if a := r.actions[id]; a.MeetingID == meetingID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ListUserActions returns a user's actions, highest priority and earliest due first
func (r *MemoryRepository) ListUserActions(ctx context.Context, filter entities.ActionFilter) ([]*entities.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Action, 0)
	for _, id := range r.order {
		a := r.actions[id]
		if a.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if pi, pj := out[i].Priority.Rank(), out[j].Priority.Rank(); pi != pj {
			return pi > pj
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out, nil
}

// UpdateAction applies a forward-only status change
func (r *MemoryRepository) UpdateAction(ctx context.Context, id uuid.UUID, update entities.ActionUpdate) (*entities.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	action, ok := r.actions[id]
	if !ok {
		return nil, entities.ErrActionNotFound
	}
	if update.At.IsZero() {
		update.At = time.Now().UTC()
	}

	next := *action
	if err := next.ApplyUpdate(update); err != nil {
		return nil, err
	}
	next.UpdatedAt = update.At
	*action = next

	out := next
	return &out, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

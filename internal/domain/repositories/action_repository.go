package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// ActionRepository defines the interface for action data access
type ActionRepository interface {
	// CreateAction stores a new action
	CreateAction(ctx context.Context, action *entities.Action) error

	// GetAction retrieves an action by ID, returning nil when it does not exist
	GetAction(ctx context.Context, id uuid.UUID) (*entities.Action, error)

	// ListActions retrieves the actions of a meeting in creation order
	ListActions(ctx context.Context, meetingID uuid.UUID) ([]*entities.Action, error)

	// ListUserActions retrieves a user's actions, highest priority and earliest due first
	ListUserActions(ctx context.Context, filter entities.ActionFilter) ([]*entities.Action, error)

	// UpdateAction applies a status change and returns the stored action.
	// Returns entities.ErrActionNotFound when the action does not exist.
	UpdateAction(ctx context.Context, id uuid.UUID, update entities.ActionUpdate) (*entities.Action, error)
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

const priorityOrder = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC"

// ActionRepository handles action data operations
type ActionRepository struct {
	db *gorm.DB
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// CreateAction creates a new action
func (r *ActionRepository) CreateAction(ctx context.Context, action *entities.Action) error {
	if err := prepareAction(action); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(action).Error
}

// prepareAction fills the defaults of a new action row
func prepareAction(action *entities.Action) error {
	if action == nil {
		return errors.New("action cannot be nil")
	}
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	if action.Status == "" {
		action.Status = entities.ActionStatusPending
	}
	return nil
}

// GetAction retrieves an action by ID
func (r *ActionRepository) GetAction(ctx context.Context, id uuid.UUID) (*entities.Action, error) {
	var action entities.Action
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&action).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &action, nil
}

// ListActions retrieves all actions of a meeting
func (r *ActionRepository) ListActions(ctx context.Context, meetingID uuid.UUID) ([]*entities.Action, error) {
	var actions []*entities.Action
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// ListUserActions retrieves a user's actions, optionally by status
func (r *ActionRepository) ListUserActions(ctx context.Context, filter entities.ActionFilter) ([]*entities.Action, error) {
	var actions []*entities.Action
	query := r.db.WithContext(ctx).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Order(priorityOrder).Order("due_date ASC").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// UpdateAction applies a forward-only status change
func (r *ActionRepository) UpdateAction(ctx context.Context, id uuid.UUID, update entities.ActionUpdate) (*entities.Action, error) {
	var action entities.Action
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&action).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entities.ErrActionNotFound
			}
			return err
		}

		if update.At.IsZero() {
			update.At = time.Now().UTC()
		}
		if err := action.ApplyUpdate(update); err != nil {
			return err
		}
		action.UpdatedAt = update.At

		return tx.Model(&action).
			Select("status", "completed_at", "implementation_notes", "updated_at").
			Updates(&action).Error
	})
	if err != nil {
		return nil, err
	}
	return &action, nil
}

package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/pipeline"
)

// ActionService updates and lists a user's actions
type ActionService interface {
	UpdateActionStatus(ctx context.Context, userID string, actionID uuid.UUID, status entities.ActionStatus, notes *string) (*entities.Action, error)
	ListUserActions(ctx context.Context, filter entities.ActionFilter) ([]*entities.Action, error)
	UserStats(ctx context.Context, userID string) (*pipeline.UserStats, error)
}

// Action handles action endpoints
type Action struct {
	svc    ActionService
	logger *zap.Logger
}

// NewAction creates a new Action handler
func NewAction(svc ActionService, logger *zap.Logger) *Action {
	return &Action{svc: svc, logger: logger}
}

// ListActions lists the caller's actions
// @Summary      List actions
// @Description  Lists the authenticated user's actions, highest priority first, then earliest due date.
// @Tags         Actions
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"  Enums(pending, in_progress, completed)
// @Success      200     {object}  common.SuccessResponse{data=[]entities.Action}
// @Failure      400     {object}  common.ErrorResponse  "Invalid status"
// @Failure      401     {object}  common.ErrorResponse  "User not authenticated"
// @Router       /actions [get]
func (h *Action) ListActions(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	req := meeting.ListActionsRequest{Status: c.QueryParam("status")}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	actions, err := h.svc.ListUserActions(c.Request().Context(), entities.ActionFilter{
		UserID: userID,
		Status: entities.ActionStatus(req.Status),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if actions == nil {
		actions = []*entities.Action{}
	}
	return HandleSuccess(h.logger, c, actions)
}

// UpdateAction moves an action forward and records implementation notes
// @Summary      Update action
// @Description  Moves an action forward (pending, in_progress, completed) and optionally replaces its implementation notes. Backward moves are rejected.
// @Tags         Actions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Action ID (UUID)"
// @Param        request  body      meeting.UpdateActionRequest  true  "Status and notes"
// @Success      200      {object}  common.SuccessResponse{data=entities.Action}
// @Failure      400      {object}  common.ErrorResponse  "Invalid payload"
// @Failure      403      {object}  common.ErrorResponse  "Not the action owner"
// @Failure      404      {object}  common.ErrorResponse  "Action not found"
// @Failure      409      {object}  common.ErrorResponse  "Backward status change"
// @Router       /actions/{id} [patch]
func (h *Action) UpdateAction(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	actionID, err := parseID(c, "action")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meeting.UpdateActionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Status == "" && req.ImplementationNotes == nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("status or implementationNotes is required"))
	}

	action, err := h.svc.UpdateActionStatus(c.Request().Context(), userID, actionID, entities.ActionStatus(req.Status), req.ImplementationNotes)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, action)
}

// Stats returns the caller's implementation dashboard
// @Summary      User stats
// @Description  Implementation rate, completed and high-priority open actions, average success probability, the five open actions due soonest and the three latest meetings with their action counts.
// @Tags         Actions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.SuccessResponse{data=pipeline.UserStats}
// @Failure      401  {object}  common.ErrorResponse  "User not authenticated"
// @Router       /stats [get]
func (h *Action) Stats(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	stats, err := h.svc.UserStats(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, stats)
}

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MeetingKey is the echo context key holding the meeting loaded by RequireMeetingOwner
const MeetingKey = "meeting"

// MeetingFinder loads a meeting; a missing meeting is (nil, nil)
type MeetingFinder interface {
	GetMeeting(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
}

// RequireMeetingOwner middleware: only allow the uploader to touch a meeting
func RequireMeetingOwner(finder MeetingFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			meetingID, err := uuid.Parse(c.Param("id"))
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]interface{}{
					"error":   "invalid_meeting_id",
					"message": "meeting ID must be a valid UUID",
				})
			}
			userID, ok := c.Get("user_id").(string)
			if !ok || userID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": "user not authenticated",
				})
			}
			m, err := finder.GetMeeting(c.Request().Context(), meetingID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"error":   "meeting_lookup_failed",
					"message": err.Error(),
				})
			}
			if m == nil {
				return c.JSON(http.StatusNotFound, map[string]interface{}{
					"error":   "meeting_not_found",
					"message": "meeting not found",
				})
			}
			if m.UserID != userID {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"error":   "not_owner",
					"message": "user does not own this meeting",
				})
			}
			c.Set(MeetingKey, m)
			return next(c)
		}
	}
}

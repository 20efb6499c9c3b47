package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-insights/pkg/jwt"
)

const (
	// UserIDKey is the echo context key holding the caller's user ID
	UserIDKey = "user_id"

	// UserIDHeader names the caller when token auth is disabled
	UserIDHeader = "X-User-ID"

	// DemoUserID is used when token auth is disabled and no header is sent
	DemoUserID = "demo-user"
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that sets "user_id" (string) into the
// Echo context. With a nil validator the X-User-ID header is trusted and
// falls back to the demo user.
func EchoAuth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if validator == nil {
				userID := strings.TrimSpace(c.Request().Header.Get(UserIDHeader))
				if userID == "" {
					userID = DemoUserID
				}
				c.Set(UserIDKey, userID)
				return next(c)
			}

			token := extractToken(c.Request())
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}

			claims, err := validator.ValidateAccessToken(token)
			if errors.Is(err, jwt.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication token has expired")
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(UserIDKey, claims.UserID)
			return next(c)
		}
	}
}

// UserID reads the caller set by EchoAuth
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(UserIDKey).(string)
	return id, ok && id != ""
}

// Helper functions

func extractToken(r *http.Request) string {
	// Try Authorization header first
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// Try cookie as fallback
	cookie, err := r.Cookie("access_token")
	if err == nil {
		return cookie.Value
	}

	return ""
}

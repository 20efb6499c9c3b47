package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the OpenAPI document served under /swagger
	_ "github.com/johnquangdev/meeting-insights/docs"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	pkgmw "github.com/johnquangdev/meeting-insights/pkg/middleware"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *Meeting
	actionHandler  *Action
	meetings       pkgmw.MeetingFinder
	authMW         echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *Meeting, actionHandler *Action, meetings pkgmw.MeetingFinder, authMW echo.MiddlewareFunc) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
		actionHandler:  actionHandler,
		meetings:       meetings,
		authMW:         authMW,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")
	if rt.authMW != nil {
		v1.Use(rt.authMW)
	}

	rt.setupMeetingRoutes(v1)
	rt.setupActionRoutes(v1)
}

// setupMeetingRoutes configures meeting routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings")

	if rt.meetingHandler == nil {
		meetingGroup.Any("*", rt.notImplemented)
		return
	}

	maxBody := "500M"
	if rt.cfg != nil && rt.cfg.Storage.MaxUploadMB > 0 {
		maxBody = fmt.Sprintf("%dM", rt.cfg.Storage.MaxUploadMB+1)
	}

	meetingGroup.POST("", rt.meetingHandler.CreateMeeting)
	meetingGroup.POST("/upload", rt.meetingHandler.UploadMeeting, echomw.BodyLimit(maxBody))
	meetingGroup.GET("", rt.meetingHandler.ListMeetings)

	owned := meetingGroup.Group("/:id", pkgmw.RequireMeetingOwner(rt.meetings))
	owned.GET("", rt.meetingHandler.GetMeeting)
	owned.GET("/progress", rt.meetingHandler.GetProgress)
	owned.GET("/progress/stream", rt.meetingHandler.StreamProgress)
	owned.POST("/process", rt.meetingHandler.ProcessMeeting)
	owned.GET("/actions/export", rt.meetingHandler.ExportActions)
}

// setupActionRoutes configures action routes
func (rt *Router) setupActionRoutes(g *echo.Group) {
	actionGroup := g.Group("/actions")

	if rt.actionHandler == nil {
		actionGroup.Any("*", rt.notImplemented)
		g.GET("/stats", rt.notImplemented)
		return
	}

	g.GET("/stats", rt.actionHandler.Stats)

	actionGroup.GET("", rt.actionHandler.ListActions)
	actionGroup.PATCH("/:id", rt.actionHandler.UpdateAction)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "development"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"environment": env,
	})
}

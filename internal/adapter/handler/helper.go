package handler

import (
	stdErrors "errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/http/middleware"
	usecaseErrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-insights/internal/usecase/transcription"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return respond(logger, c, http.StatusOK, data)
}

// HandleAccepted is HandleSuccess for work that continues in the background
func HandleAccepted(logger *zap.Logger, c echo.Context, data interface{}) error {
	return respond(logger, c, http.StatusAccepted, data)
}

// HandleCreated is HandleSuccess for newly created resources
func HandleCreated(logger *zap.Logger, c echo.Context, data interface{}) error {
	return respond(logger, c, http.StatusCreated, data)
}

func respond(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger.
// Domain errors are translated to AppError first.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if !stdErrors.As(err, &appErr) {
		appErr = toAppError(c, err)
	}

	if logger != nil {
		log := logger.Warn
		if appErr.HTTPCode >= http.StatusInternalServerError {
			log = logger.Error
		}
		log("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Any("app_code", appErr.Code),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	body := errs{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Details: appErr.Details,
	}

	return c.JSON(appErr.HTTPCode, body)
}

// toAppError maps usecase and domain errors onto the HTTP error catalog
func toAppError(c echo.Context, err error) errors.AppError {
	var perr *pipeline.ProcessingError
	var mediaErr *transcription.MediaNotFoundError

	switch {
	case stdErrors.As(err, &mediaErr):
		// Missing media still fails the run, but the caller can fix it.
		e := errors.ErrMediaNotFound(mediaErr.Ref)
		e.Raw = err
		if stdErrors.As(err, &perr) {
			e = e.WithDetail("stage", perr.Stage)
		}
		return e
	case stdErrors.As(err, &perr):
		return errors.ErrProcessingFailed(perr.Stage, perr.Err)
	case stdErrors.Is(err, entities.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound(c.Param("id"))
	case stdErrors.Is(err, entities.ErrActionNotFound):
		return errors.ErrActionNotFound(c.Param("id"))
	case stdErrors.Is(err, entities.ErrProgressNotFound):
		return errors.ErrProgressNotFound(c.Param("id"))
	case stdErrors.Is(err, entities.ErrMediaNotFound):
		return errors.ErrMediaNotFound("")
	case stdErrors.Is(err, usecaseErrors.ErrNotProcessable):
		e := errors.ErrMeetingInvalidState(c.Param("id"), "")
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrInvalidActionTransition),
		stdErrors.Is(err, entities.ErrInvalidStatusTransition):
		e := errors.ErrConflict(err.Error())
		e.Raw = err
		return e
	case stdErrors.Is(err, entities.ErrInvalidActionStatus):
		return errors.ErrActionInvalidStatus(err)
	case stdErrors.Is(err, usecaseErrors.ErrNotMeetingOwner),
		stdErrors.Is(err, usecaseErrors.ErrNotActionOwner),
		stdErrors.Is(err, entities.ErrForbidden):
		return errors.ErrForbidden(err.Error())
	case stdErrors.Is(err, entities.ErrUnauthorized):
		return errors.ErrUnauthenticated()
	case stdErrors.Is(err, usecaseErrors.ErrQueueFull),
		stdErrors.Is(err, usecaseErrors.ErrDispatcherStopped):
		e := errors.ErrProcessingQueueFull()
		e.Raw = err
		return e
	case stdErrors.Is(err, usecaseErrors.ErrTitleRequired),
		stdErrors.Is(err, usecaseErrors.ErrAudioRequired),
		stdErrors.Is(err, usecaseErrors.ErrInvalidPageLimit),
		stdErrors.Is(err, usecaseErrors.ErrInvalidInput),
		stdErrors.Is(err, entities.ErrInvalidRequest):
		return errors.ErrInvalidArgument(err.Error())
	}
	return errors.ErrInternal(err)
}

// currentUser reads the caller id set by the auth middleware
func currentUser(c echo.Context) (string, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return "", errors.ErrUnauthenticated()
	}
	return userID, nil
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidArgument(name + " ID must be a valid UUID")
	}
	return id, nil
}

func queryInt(c echo.Context, key string, def int) (int, error) {
	raw := c.QueryParam(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.ErrInvalidArgument(key + " must be an integer")
	}
	return v, nil
}

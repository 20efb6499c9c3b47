package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-insights/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-insights/internal/usecase/report"
)

// MeetingService is the part of the orchestrator the HTTP layer drives
type MeetingService interface {
	CreateMeeting(ctx context.Context, in pipeline.CreateMeetingInput) (*entities.Meeting, error)
	StartProcessing(ctx context.Context, meetingID uuid.UUID) (*pipeline.Result, error)
	GetStatus(ctx context.Context, meetingID uuid.UUID) (*pipeline.Status, error)
	GetProgress(ctx context.Context, meetingID uuid.UUID) (*entities.ProcessingProgress, error)
	ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entities.Meeting, error)
}

// Queue hands claimed meetings to background workers
type Queue interface {
	Enqueue(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error)
}

// MediaStore stores uploaded audio and returns its ref
type MediaStore interface {
	Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
}

// ProgressSubscriber streams progress snapshots as they are written
type ProgressSubscriber interface {
	Subscribe(ctx context.Context, meetingID uuid.UUID) (<-chan entities.ProcessingProgress, error)
}

// Meeting handles meeting endpoints
type Meeting struct {
	svc         MeetingService
	queue       Queue
	media       MediaStore
	subscriber  ProgressSubscriber
	maxUploadMB int64
	logger      *zap.Logger
}

// MeetingOption configures optional Meeting handler collaborators
type MeetingOption func(*Meeting)

// WithQueue enables ?async=true processing
func WithQueue(q Queue) MeetingOption {
	return func(h *Meeting) { h.queue = q }
}

// WithMediaStore enables multipart uploads
func WithMediaStore(store MediaStore, maxUploadMB int64) MeetingOption {
	return func(h *Meeting) {
		h.media = store
		h.maxUploadMB = maxUploadMB
	}
}

// WithProgressSubscriber enables the progress event stream
func WithProgressSubscriber(sub ProgressSubscriber) MeetingOption {
	return func(h *Meeting) { h.subscriber = sub }
}

// NewMeeting creates a new Meeting handler
func NewMeeting(svc MeetingService, logger *zap.Logger, opts ...MeetingOption) *Meeting {
	h := &Meeting{svc: svc, maxUploadMB: 500, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateMeeting registers a meeting for audio already in the media store
// @Summary      Create meeting
// @Description  Registers a meeting for an audio reference already present in the media store. The meeting starts in the uploaded state.
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      meeting.CreateMeetingRequest  true  "Meeting metadata"
// @Success      201      {object}  common.SuccessResponse{data=entities.Meeting}
// @Failure      400      {object}  common.ErrorResponse  "Invalid payload"
// @Failure      401      {object}  common.ErrorResponse  "User not authenticated"
// @Router       /meetings [post]
func (h *Meeting) CreateMeeting(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meeting.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	m, err := h.svc.CreateMeeting(c.Request().Context(), pipeline.CreateMeetingInput{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		MeetingType:  req.MeetingType,
		Participants: req.Participants,
		AudioRef:     req.AudioRef,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, m)
}

// UploadMeeting stores an audio file and creates its meeting
// @Summary      Upload meeting audio
// @Description  Stores the uploaded audio in the media store and creates a meeting referencing it.
// @Tags         Meetings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file          formData  file    true   "Audio file"
// @Param        title         formData  string  true   "Meeting title"
// @Param        description   formData  string  false  "Description"
// @Param        meetingType   formData  string  false  "Meeting type"
// @Param        participants  formData  string  false  "Comma separated participant names"
// @Success      201  {object}  common.SuccessResponse{data=entities.Meeting}
// @Failure      400  {object}  common.ErrorResponse  "Missing file or title"
// @Failure      413  {object}  common.ErrorResponse  "Upload too large"
// @Failure      500  {object}  common.ErrorResponse  "Storage failure"
// @Router       /meetings/upload [post]
func (h *Meeting) UploadMeeting(c echo.Context) error {
	if h.media == nil {
		return HandleError(h.logger, c, errors.ErrAIServiceUnavailable("media storage"))
	}
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var form meeting.UploadMeetingForm
	if err := c.Bind(&form); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&form); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("file is required"))
	}
	if h.maxUploadMB > 0 && fh.Size > h.maxUploadMB<<20 {
		return HandleError(h.logger, c, errors.ErrUploadTooLarge(h.maxUploadMB))
	}

	src, err := fh.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	defer src.Close()

	ctx := c.Request().Context()
	contentType := fh.Header.Get(echo.HeaderContentType)
	ref, err := h.media.Put(ctx, fh.Filename, src, fh.Size, contentType)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("put", err))
	}
	if h.logger != nil {
		h.logger.Info("📤 Meeting audio stored",
			zap.String("user_id", userID),
			zap.String("audio_ref", ref),
			zap.Int64("size", fh.Size),
		)
	}

	m, err := h.svc.CreateMeeting(ctx, pipeline.CreateMeetingInput{
		UserID:           userID,
		Title:            form.Title,
		Description:      form.Description,
		MeetingType:      form.MeetingType,
		Participants:     splitParticipants(form.Participants),
		AudioRef:         ref,
		OriginalFileName: fh.Filename,
		FileSize:         fh.Size,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, m)
}

// ListMeetings lists the caller's meetings
// @Summary      List meetings
// @Description  Lists the authenticated user's meetings, newest first.
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (1-100)"  default(20)
// @Param        offset  query     int  false  "Offset"             default(0)
// @Success      200     {object}  common.SuccessResponse{data=common.ListResponse}
// @Failure      400     {object}  common.ErrorResponse  "Invalid pagination"
// @Failure      401     {object}  common.ErrorResponse  "User not authenticated"
// @Router       /meetings [get]
func (h *Meeting) ListMeetings(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	req := meeting.ListMeetingsRequest{Limit: 20}
	if req.Limit, err = queryInt(c, "limit", 20); err != nil {
		return HandleError(h.logger, c, err)
	}
	if req.Offset, err = queryInt(c, "offset", 0); err != nil {
		return HandleError(h.logger, c, err)
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	meetings, err := h.svc.ListMeetings(c.Request().Context(), userID, req.Limit, req.Offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToMeetingListResponse(meetings, req.Limit, req.Offset))
}

// GetMeeting returns a meeting with its status and actions
// @Summary      Get meeting status
// @Description  Returns the meeting's processing status together with the meeting and its actions.
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=meeting.StatusResponse}
// @Failure      403  {object}  map[string]interface{}  "Not the meeting owner"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id} [get]
func (h *Meeting) GetMeeting(c echo.Context) error {
	meetingID, err := parseID(c, "meeting")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	status, err := h.svc.GetStatus(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToStatusResponse(status))
}

// GetProgress returns the latest progress snapshot
// @Summary      Get processing progress
// @Description  Returns the latest progress snapshot. Falls back to the stored status when no snapshot is cached.
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=entities.ProcessingProgress}
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Router       /meetings/{id}/progress [get]
func (h *Meeting) GetProgress(c echo.Context) error {
	meetingID, err := parseID(c, "meeting")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	p, err := h.svc.GetProgress(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, p)
}

// StreamProgress pushes progress snapshots as server-sent events until the
// run reaches a terminal stage or the client goes away
// @Summary      Stream processing progress
// @Description  Server-sent events carrying progress snapshots. The stream closes after the completed or failed snapshot.
// @Tags         Meetings
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id   path  string  true  "Meeting ID (UUID)"
// @Success      200  {string}  string  "event stream"
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Failure      503  {object}  common.ErrorResponse    "Streaming unavailable"
// @Router       /meetings/{id}/progress/stream [get]
func (h *Meeting) StreamProgress(c echo.Context) error {
	if h.subscriber == nil {
		return HandleError(h.logger, c, errors.ErrAIServiceUnavailable("progress stream"))
	}
	meetingID, err := parseID(c, "meeting")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx := c.Request().Context()
	events, err := h.subscriber.Subscribe(ctx, meetingID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrCacheFailed("subscribe", err))
	}
	current, err := h.svc.GetProgress(ctx, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	if err := writeEvent(res, current); err != nil || isTerminal(current.Stage) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeEvent(res, &p); err != nil || isTerminal(p.Stage) {
				return nil
			}
		}
	}
}

// ProcessMeeting runs the pipeline for an uploaded meeting
// @Summary      Process meeting
// @Description  Claims an uploaded meeting and runs transcription, insight extraction, action planning and action persistence. With async=true the run is queued and 202 is returned immediately.
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Meeting ID (UUID)"
// @Param        async  query     bool    false  "Queue the run instead of waiting for it"
// @Success      200    {object}  common.SuccessResponse{data=meeting.ProcessResponse}
// @Success      202    {object}  common.SuccessResponse{data=meeting.QueuedResponse}
// @Failure      404    {object}  map[string]interface{}  "Meeting not found"
// @Failure      409    {object}  common.ErrorResponse    "Meeting is not awaiting processing"
// @Failure      422    {object}  common.ErrorResponse    "Meeting media not found"
// @Failure      500    {object}  common.ErrorResponse    "Processing failed at a stage"
// @Failure      503    {object}  common.ErrorResponse    "Processing queue is full"
// @Router       /meetings/{id}/process [post]
func (h *Meeting) ProcessMeeting(c echo.Context) error {
	meetingID, err := parseID(c, "meeting")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req meeting.ProcessMeetingRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("async must be a boolean"))
	}

	if req.Async {
		if h.queue == nil {
			return HandleError(h.logger, c, errors.ErrProcessingQueueFull())
		}
		m, err := h.queue.Enqueue(c.Request().Context(), meetingID)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		return HandleAccepted(h.logger, c, presenter.ToQueuedResponse(m))
	}

	// A client disconnect must not fail a claimed meeting.
	ctx := context.WithoutCancel(c.Request().Context())
	result, err := h.svc.StartProcessing(ctx, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToProcessResponse(result))
}

// ExportActions downloads the meeting's actions as a spreadsheet
// @Summary      Export actions
// @Description  Downloads the meeting's actions and advice as an XLSX workbook.
// @Tags         Meetings
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        id   path  string  true  "Meeting ID (UUID)"
// @Success      200  {file}    binary
// @Failure      404  {object}  map[string]interface{}  "Meeting not found"
// @Failure      500  {object}  common.ErrorResponse    "Export failed"
// @Router       /meetings/{id}/actions/export [get]
func (h *Meeting) ExportActions(c echo.Context) error {
	meetingID, err := parseID(c, "meeting")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	status, err := h.svc.GetStatus(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	f, err := report.Workbook(status.Meeting, status.Actions)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrReportExportFailed("xlsx", err))
	}
	defer f.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, report.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.Filename(status.Meeting)))
	res.WriteHeader(http.StatusOK)
	if _, err := f.WriteTo(res); err != nil && h.logger != nil {
		h.logger.Error("❌ Failed to write actions export",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func writeEvent(res *echo.Response, p *entities.ProcessingProgress) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: progress\ndata: %s\n\n", payload); err != nil {
		return err
	}
	res.Flush()
	return nil
}

func isTerminal(st entities.ProcessingStage) bool {
	return st == entities.ProcessingStageCompleted || st == entities.ProcessingStageFailed
}

func splitParticipants(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

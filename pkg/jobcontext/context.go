package jobcontext

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyMeetingID    KeyContext = "meeting_id"
	keyStage        KeyContext = "stage"
	keyWorkerID     KeyContext = "worker_id"
	keyRunStartTime KeyContext = "run_start_time"
)

// RunMetadata holds metadata for one processing run
type RunMetadata struct {
	MeetingID uuid.UUID
	Stage     string
	WorkerID  int
	StartTime time.Time
}

// RunBegin initializes a run context with metadata and timeout.
// A zero timeout leaves the parent deadline in place.
func RunBegin(parentCtx context.Context, meetingID uuid.UUID, workerID int, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}

	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyRunStartTime, time.Now())

	return ctx, cancel
}

// Run executes fn and converts a panic into an error
func Run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before run: %w", ctx.Err())
	}
	return fn(ctx)
}

// GetMeetingID extracts meeting ID from context
func GetMeetingID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyMeetingID).(uuid.UUID)
	return id, ok
}

// WithStage records the pipeline stage currently executing
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, keyStage, stage)
}

// GetStage extracts the current stage from context
func GetStage(ctx context.Context) string {
	stage, _ := ctx.Value(keyStage).(string)
	return stage
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetRunStartTime extracts run start time from context
func GetRunStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyRunStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	meetingID, _ := GetMeetingID(ctx)
	startTime, _ := GetRunStartTime(ctx)

	return &RunMetadata{
		MeetingID: meetingID,
		Stage:     GetStage(ctx),
		WorkerID:  GetWorkerID(ctx),
		StartTime: startTime,
	}
}

// IsRetryableError checks if an error should trigger a retry
// Retryable errors include: network errors, timeouts, rate limits, 5xx
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Per-call timeouts
	if strings.Contains(errStr, "context deadline exceeded") {
		return true
	}

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "eof") {
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "overloaded") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}

// IsRetryableStatus reports whether an HTTP status code is worth retrying
func IsRetryableStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}

package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden access")
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("resource conflict")
	ErrInternalError = errors.New("internal server error")
)

// Meeting errors
var (
	ErrTitleRequired    = errors.New("meeting title is required")
	ErrAudioRequired    = errors.New("meeting audio reference is required")
	ErrNotProcessable   = errors.New("meeting is not awaiting processing")
	ErrNotMeetingOwner  = errors.New("meeting belongs to another user")
	ErrInvalidPageLimit = errors.New("limit must be between 1 and 100")
)

// Action errors
var (
	ErrNotActionOwner = errors.New("action belongs to another user")
)

// Dispatch errors
var (
	ErrQueueFull         = errors.New("processing queue is full")
	ErrDispatcherStopped = errors.New("processing dispatcher is not running")
)

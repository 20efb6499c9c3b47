package entities

import "errors"

// Domain errors
var (
	// Meeting errors
	ErrMeetingNotFound         = errors.New("meeting not found")
	ErrInvalidStatusTransition = errors.New("invalid processing status transition")

	// Action errors
	ErrActionNotFound          = errors.New("action not found")
	ErrInvalidActionStatus     = errors.New("invalid action status")
	ErrInvalidActionTransition = errors.New("action status can only move forward")

	// Media errors
	ErrMediaNotFound = errors.New("media not found")

	// Progress errors
	ErrProgressNotFound = errors.New("progress not found")

	// Generic errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
)

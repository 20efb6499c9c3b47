package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

// ProcessingError is the only error a processing run surfaces. The meeting
// has already been moved to failed when it is returned.
type ProcessingError struct {
	MeetingID uuid.UUID
	Stage     string
	Err       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing meeting %s failed at %s: %v", e.MeetingID, e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

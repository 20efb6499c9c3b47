package transcription

import (
	"fmt"
	"time"
)

// MediaNotFoundError reports that the referenced audio does not exist
type MediaNotFoundError struct {
	Ref string
	Err error
}

func (e *MediaNotFoundError) Error() string {
	return fmt.Sprintf("media not found: %s", e.Ref)
}

func (e *MediaNotFoundError) Unwrap() error { return e.Err }

// TimeoutError reports that a job did not complete within the poll bound
type TimeoutError struct {
	JobID    string
	Attempts int
	Interval time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transcription %s not completed after %d polls every %s", e.JobID, e.Attempts, e.Interval)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ServiceError reports a failed call to the speech service
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("transcription service %s failed: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

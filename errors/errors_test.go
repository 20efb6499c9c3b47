package errors

import (
	stdErrors "errors"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	raw := stdErrors.New("disk full")
	err := ErrStorageFailed("put", raw)

	if !strings.Contains(err.Error(), "INTEGRATION_STORAGE_FAILED") || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !stdErrors.Is(err, raw) {
		t.Fatal("expected raw error to be reachable via errors.Is")
	}
	if err.Details["operation"] != "put" {
		t.Fatalf("expected operation detail, got %v", err.Details)
	}
}

func TestConstructors_HTTPCodes(t *testing.T) {
	tests := []struct {
		name string
		err  AppError
		want int
	}{
		{"meeting not found", ErrMeetingNotFound("m1"), http.StatusNotFound},
		{"invalid state", ErrMeetingInvalidState("m1", "completed"), http.StatusConflict},
		{"media not found", ErrMediaNotFound("/a.mp3"), http.StatusUnprocessableEntity},
		{"queue full", ErrProcessingQueueFull(), http.StatusServiceUnavailable},
		{"unauthenticated", ErrUnauthenticated(), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.HTTPCode != tt.want {
				t.Fatalf("want %d got %d", tt.want, tt.err.HTTPCode)
			}
		})
	}
}

func TestErrorCode_String(t *testing.T) {
	if ErrorCode_MEETING_NOT_FOUND.String() != "MEETING_NOT_FOUND" {
		t.Fatalf("unexpected name %s", ErrorCode_MEETING_NOT_FOUND)
	}
	if ErrorCode(42).String() != "UNKNOWN" {
		t.Fatal("unknown codes should render UNKNOWN")
	}
}

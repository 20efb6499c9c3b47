package errors

// ErrorCode is the application error code returned in API bodies
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1005
	ErrorCode_FORBIDDEN         ErrorCode = 1006
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1007
	ErrorCode_CONFLICT          ErrorCode = 1008

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2001

	// Meetings
	ErrorCode_MEETING_NOT_FOUND     ErrorCode = 3000
	ErrorCode_MEETING_INVALID_STATE ErrorCode = 3001
	ErrorCode_MEDIA_NOT_FOUND       ErrorCode = 3002
	ErrorCode_ACTION_NOT_FOUND      ErrorCode = 3003
	ErrorCode_ACTION_INVALID_STATUS ErrorCode = 3004
	ErrorCode_PROCESSING_FAILED     ErrorCode = 3005
	ErrorCode_PROCESSING_QUEUE_FULL ErrorCode = 3006
	ErrorCode_PROGRESS_NOT_FOUND    ErrorCode = 3007
	ErrorCode_UPLOAD_TOO_LARGE      ErrorCode = 3008

	// AI
	ErrorCode_AI_TRANSCRIPTION_FAILED ErrorCode = 4000
	ErrorCode_AI_ANALYSIS_FAILED      ErrorCode = 4001
	ErrorCode_AI_SERVICE_UNAVAILABLE  ErrorCode = 4002

	// Reports
	ErrorCode_REPORT_EXPORT_FAILED ErrorCode = 5000

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 6000
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 6001

	// Database
	ErrorCode_DB_QUERY_FAILED ErrorCode = 7000
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:                  "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_CONFLICT:                   "CONFLICT",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_MEETING_NOT_FOUND:          "MEETING_NOT_FOUND",
	ErrorCode_MEETING_INVALID_STATE:      "MEETING_INVALID_STATE",
	ErrorCode_MEDIA_NOT_FOUND:            "MEDIA_NOT_FOUND",
	ErrorCode_ACTION_NOT_FOUND:           "ACTION_NOT_FOUND",
	ErrorCode_ACTION_INVALID_STATUS:      "ACTION_INVALID_STATUS",
	ErrorCode_PROCESSING_FAILED:          "PROCESSING_FAILED",
	ErrorCode_PROCESSING_QUEUE_FULL:      "PROCESSING_QUEUE_FULL",
	ErrorCode_PROGRESS_NOT_FOUND:         "PROGRESS_NOT_FOUND",
	ErrorCode_UPLOAD_TOO_LARGE:           "UPLOAD_TOO_LARGE",
	ErrorCode_AI_TRANSCRIPTION_FAILED:    "AI_TRANSCRIPTION_FAILED",
	ErrorCode_AI_ANALYSIS_FAILED:         "AI_ANALYSIS_FAILED",
	ErrorCode_AI_SERVICE_UNAVAILABLE:     "AI_SERVICE_UNAVAILABLE",
	ErrorCode_REPORT_EXPORT_FAILED:       "REPORT_EXPORT_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

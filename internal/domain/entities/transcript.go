package entities

// TranscriptionSource names the backend that produced a transcript
type TranscriptionSource string

const (
	TranscriptionSourceAssemblyAI TranscriptionSource = "assemblyai"
	TranscriptionSourceMock       TranscriptionSource = "mock"
)

// SpeakerSegment is a contiguous stretch of speech by one speaker
type SpeakerSegment struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"` // seconds
	End        float64 `json:"end"`   // seconds
	Confidence float64 `json:"confidence"`
}

// TranscriptionResult is produced once per meeting and never changed afterwards
type TranscriptionResult struct {
	Transcript string              `json:"transcript"`
	Speakers   []SpeakerSegment    `json:"speakers"`
	Duration   int                 `json:"duration"` // minutes
	Confidence float64             `json:"confidence"`
	Language   string              `json:"language"`
	Source     TranscriptionSource `json:"source"`
}

// Mode maps the source onto the stage mode recorded on the meeting
func (r *TranscriptionResult) Mode() StageMode {
	if r.Source == TranscriptionSourceMock {
		return StageModeDegraded
	}
	return StageModeReal
}

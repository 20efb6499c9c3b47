package meeting

// CreateMeetingRequest registers audio that is already in the media store
type CreateMeetingRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=255"`
	Description  string   `json:"description,omitempty" validate:"max=5000"`
	AudioRef     string   `json:"audioRef" validate:"required"`
	MeetingType  string   `json:"meetingType,omitempty" validate:"omitempty,max=50"`
	Participants []string `json:"participants,omitempty" validate:"omitempty,max=50,dive,min=1,max=255"`
}

// UploadMeetingForm is the non-file part of a multipart upload
type UploadMeetingForm struct {
	Title        string `form:"title" validate:"required,min=1,max=255"`
	Description  string `form:"description" validate:"max=5000"`
	MeetingType  string `form:"meetingType" validate:"omitempty,max=50"`
	Participants string `form:"participants"` // comma separated
}

// ListMeetingsRequest represents query parameters for listing meetings
type ListMeetingsRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// ProcessMeetingRequest represents query parameters for processing
type ProcessMeetingRequest struct {
	Async bool `query:"async"`
}

// UpdateActionRequest moves an action forward and/or records notes
type UpdateActionRequest struct {
	Status              string  `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
	ImplementationNotes *string `json:"implementationNotes,omitempty" validate:"omitempty,max=5000"`
}

// ListActionsRequest represents query parameters for listing actions
type ListActionsRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

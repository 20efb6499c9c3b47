package presenter

import (
	"github.com/johnquangdev/meeting-insights/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-insights/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/pipeline"
)

// ToMeetingSummary converts a Meeting entity to its list row
func ToMeetingSummary(m *entities.Meeting) *meeting.MeetingSummaryResponse {
	if m == nil {
		return nil
	}
	participants := make([]string, len(m.Participants))
	copy(participants, m.Participants)

	return &meeting.MeetingSummaryResponse{
		ID:               m.ID.String(),
		Title:            m.Title,
		MeetingType:      m.MeetingType,
		Participants:     participants,
		Duration:         m.Duration,
		ProcessingStatus: string(m.ProcessingStatus),
		Confidence:       m.Confidence,
		FailedStage:      m.FailedStage,
		CreatedAt:        m.CreatedAt,
		ProcessedAt:      m.ProcessedAt,
	}
}

// ToMeetingListResponse converts a page of meetings to a ListResponse
func ToMeetingListResponse(meetings []*entities.Meeting, limit, offset int) *common.ListResponse {
	rows := make([]*meeting.MeetingSummaryResponse, len(meetings))
	for i, m := range meetings {
		rows[i] = ToMeetingSummary(m)
	}
	return &common.ListResponse{
		Data: rows,
		Pagination: &common.PaginationResponse{
			Limit:  limit,
			Offset: offset,
			Count:  len(rows),
		},
	}
}

// ToStatusResponse converts a pipeline status
func ToStatusResponse(s *pipeline.Status) *meeting.StatusResponse {
	if s == nil {
		return nil
	}
	return &meeting.StatusResponse{
		Status:  string(s.Status),
		Meeting: s.Meeting,
		Actions: nonNilActions(s.Actions),
	}
}

// ToProcessResponse converts a completed run
func ToProcessResponse(r *pipeline.Result) *meeting.ProcessResponse {
	if r == nil {
		return nil
	}
	return &meeting.ProcessResponse{
		Meeting: r.Meeting,
		Actions: nonNilActions(r.Actions),
	}
}

// ToQueuedResponse describes a meeting handed to the dispatcher
func ToQueuedResponse(m *entities.Meeting) *meeting.QueuedResponse {
	return &meeting.QueuedResponse{
		MeetingID:   m.ID.String(),
		Status:      string(m.ProcessingStatus),
		ProgressURL: "/v1/meetings/" + m.ID.String() + "/progress",
	}
}

func nonNilActions(actions []*entities.Action) []*entities.Action {
	if actions == nil {
		return []*entities.Action{}
	}
	return actions
}

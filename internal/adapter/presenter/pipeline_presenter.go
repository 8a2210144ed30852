package presenter

import (
	pipelineDTO "github.com/johnquangdev/minutes360/internal/adapter/dto/pipeline"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
	"github.com/johnquangdev/minutes360/internal/usecase/pipeline"
)

// ToTranscriptResponse converts a Transcript entity to its DTO
func ToTranscriptResponse(t *entities.Transcript) *pipelineDTO.TranscriptResponse {
	if t == nil {
		return nil
	}
	return &pipelineDTO.TranscriptResponse{
		Text:            t.Text,
		FileName:        t.FileName,
		CreatedAt:       t.CreatedAt,
		DurationSeconds: t.DurationSeconds,
		Duration:        entities.FormatDuration(t.DurationSeconds),
	}
}

// ToSummaryResponse converts a Summary entity to its DTO
func ToSummaryResponse(s *entities.Summary) *pipelineDTO.SummaryResponse {
	if s == nil {
		return nil
	}
	return &pipelineDTO.SummaryResponse{
		Title:               s.Title,
		KeyDiscussionPoints: s.KeyDiscussionPoints,
		DecisionsMade:       s.DecisionsMade,
		ActionItems:         s.ActionItems,
		PendingQuestions:    s.PendingQuestions,
		Duration:            entities.FormatDuration(s.DurationSeconds),
		CreatedAt:           s.CreatedAt,
	}
}

// ToTaskResponses converts tasks to DTOs, keeping their positions as indexes
func ToTaskResponses(tasks []entities.Task) []pipelineDTO.TaskResponse {
	out := make([]pipelineDTO.TaskResponse, 0, len(tasks))
	for i, t := range tasks {
		out = append(out, pipelineDTO.TaskResponse{
			Index:       i,
			Assignee:    t.Assignee,
			Description: t.Description,
			DueDate:     t.DueDate,
			Priority:    string(t.Priority),
		})
	}
	return out
}

// ToTaskSetResponse converts tasks and keywords to a TaskSetResponse
func ToTaskSetResponse(tasks []entities.Task, keywords []string) *pipelineDTO.TaskSetResponse {
	if keywords == nil {
		keywords = []string{}
	}
	return &pipelineDTO.TaskSetResponse{
		Tasks:    ToTaskResponses(tasks),
		Keywords: keywords,
	}
}

// ToCardPreviewResponse converts a card preview to its DTO
func ToCardPreviewResponse(p *pipeline.CardPreview) *pipelineDTO.CardPreviewResponse {
	if p == nil {
		return nil
	}
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &pipelineDTO.CardPreviewResponse{
		Name:        p.Name,
		Description: p.Description,
		Tasks:       ToTaskResponses(p.Tasks),
		Keywords:    keywords,
	}
}

// ToCardResponse converts a created card to its DTO
func ToCardResponse(c *entities.Card) *pipelineDTO.CardResponse {
	if c == nil {
		return nil
	}
	resp := &pipelineDTO.CardResponse{
		ID:             c.ID,
		Name:           c.Name,
		ListID:         c.ListID,
		URL:            c.URL,
		ChecklistError: c.ChecklistError,
	}
	if c.Checklist != nil {
		items := make([]string, 0, len(c.Checklist.Items))
		for _, item := range c.Checklist.Items {
			items = append(items, item.Name)
		}
		resp.Checklist = &pipelineDTO.ChecklistResponse{
			ID:    c.Checklist.ID,
			Name:  c.Checklist.Name,
			Items: items,
		}
	}
	return resp
}

// ToBoardResponses converts boards to DTOs
func ToBoardResponses(boards []entities.Board) []pipelineDTO.BoardResponse {
	out := make([]pipelineDTO.BoardResponse, 0, len(boards))
	for _, b := range boards {
		out = append(out, pipelineDTO.BoardResponse{ID: b.ID, Name: b.Name, URL: b.URL})
	}
	return out
}

// ToListResponses converts board lists to DTOs
func ToListResponses(lists []entities.List) []pipelineDTO.ListResponse {
	out := make([]pipelineDTO.ListResponse, 0, len(lists))
	for _, l := range lists {
		out = append(out, pipelineDTO.ListResponse{ID: l.ID, Name: l.Name})
	}
	return out
}

// ToMemberResponses converts board members to DTOs
func ToMemberResponses(members []entities.Member) []pipelineDTO.MemberResponse {
	out := make([]pipelineDTO.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, pipelineDTO.MemberResponse{ID: m.ID, FullName: m.FullName, Username: m.Username})
	}
	return out
}

// ToBoardSelectionResponse converts a board selection to its DTO
func ToBoardSelectionResponse(s *pipeline.BoardSelection) *pipelineDTO.BoardSelectionResponse {
	if s == nil {
		return nil
	}
	return &pipelineDTO.BoardSelectionResponse{
		BoardID: s.BoardID,
		Lists:   ToListResponses(s.Lists),
		Members: ToMemberResponses(s.Members),
	}
}

// ToCredentialsResponse converts masked credentials to their DTO
func ToCredentialsResponse(masked entities.Credentials, configured bool) *pipelineDTO.CredentialsResponse {
	return &pipelineDTO.CredentialsResponse{
		APIKey:     masked.APIKey,
		Token:      masked.Token,
		Configured: configured,
	}
}

// ToHistoryResponse converts meeting records to history list items, oldest first
func ToHistoryResponse(records []*entities.MeetingRecord) []pipelineDTO.HistoryItemResponse {
	out := make([]pipelineDTO.HistoryItemResponse, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		out = append(out, pipelineDTO.HistoryItemResponse{
			ID:       r.ID.String(),
			Title:    r.Title,
			Date:     r.Date,
			Duration: entities.FormatDuration(r.DurationSeconds),
		})
	}
	return out
}

// ToMeetingRecordResponse converts a meeting record to its DTO
func ToMeetingRecordResponse(r *entities.MeetingRecord) *pipelineDTO.MeetingRecordResponse {
	if r == nil {
		return nil
	}
	return &pipelineDTO.MeetingRecordResponse{
		ID:         r.ID.String(),
		Title:      r.Title,
		Date:       r.Date,
		Duration:   entities.FormatDuration(r.DurationSeconds),
		Transcript: ToTranscriptResponse(r.Transcript),
		Summary:    ToSummaryResponse(r.Summary),
	}
}

// ToStateResponse converts an orchestrator snapshot to its DTO
func ToStateResponse(s pipeline.State) *pipelineDTO.StateResponse {
	keywords := s.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	resp := &pipelineDTO.StateResponse{
		Stage:           string(s.Stage),
		Progress:        s.Progress,
		UploadStatus:    string(s.UploadStatus),
		PendingFile:     s.PendingFile,
		Transcript:      ToTranscriptResponse(s.Transcript),
		Summary:         ToSummaryResponse(s.Summary),
		Tasks:           ToTaskResponses(s.Tasks),
		Keywords:        keywords,
		LastCard:        ToCardResponse(s.LastCard),
		SelectedBoardID: s.SelectedBoardID,
		CredentialsSet:  s.CredentialsSet,
		HistoryCount:    s.HistoryCount,
		LastError:       s.LastError,
	}
	if len(s.Boards) > 0 {
		resp.Boards = ToBoardResponses(s.Boards)
	}
	if len(s.Lists) > 0 {
		resp.Lists = ToListResponses(s.Lists)
	}
	if len(s.Members) > 0 {
		resp.Members = ToMemberResponses(s.Members)
	}
	return resp
}

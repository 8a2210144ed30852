package pipeline

// UpdateTranscriptRequest replaces the transcript text
type UpdateTranscriptRequest struct {
	Text string `json:"text"`
}

// UpdateSummaryRequest edits summary sections; omitted fields are left unchanged
type UpdateSummaryRequest struct {
	Title               *string `json:"title,omitempty"`
	KeyDiscussionPoints *string `json:"key_discussion_points,omitempty"`
	DecisionsMade       *string `json:"decisions_made,omitempty"`
	ActionItems         *string `json:"action_items,omitempty"`
	PendingQuestions    *string `json:"pending_questions,omitempty"`
}

// TaskRequest creates or replaces one task
type TaskRequest struct {
	Assignee    string `json:"assignee"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority" validate:"omitempty,priority"`
}

// PublishRequest selects the destination of the meeting card
type PublishRequest struct {
	BoardID string `json:"board_id,omitempty"`
	ListID  string `json:"list_id"`
}

// CredentialsRequest replaces the Trello key/token pair; empty fields keep the current value
type CredentialsRequest struct {
	APIKey string `json:"api_key"`
	Token  string `json:"token"`
}

package pipeline

import "time"

// TranscriptResponse represents a transcript in responses
type TranscriptResponse struct {
	Text            string    `json:"text"`
	FileName        string    `json:"file_name"`
	CreatedAt       time.Time `json:"created_at"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	Duration        string    `json:"duration"` // HH:MM:SS or "Unknown"
}

// SummaryResponse represents a summary in responses
type SummaryResponse struct {
	Title               string    `json:"title"`
	KeyDiscussionPoints string    `json:"key_discussion_points"`
	DecisionsMade       string    `json:"decisions_made"`
	ActionItems         string    `json:"action_items"`
	PendingQuestions    string    `json:"pending_questions"`
	Duration            string    `json:"duration"`
	CreatedAt           time.Time `json:"created_at"`
}

// TaskResponse represents one task in responses
type TaskResponse struct {
	Index       int    `json:"index"`
	Assignee    string `json:"assignee"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
}

// TaskSetResponse represents the result of task extraction or a task edit
type TaskSetResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Keywords []string       `json:"keywords"`
}

// CardPreviewResponse represents the card that would be published
type CardPreviewResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Tasks       []TaskResponse `json:"tasks"`
	Keywords    []string       `json:"keywords"`
}

// CardResponse represents a created card
type CardResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	ListID         string             `json:"list_id"`
	URL            string             `json:"url,omitempty"`
	Checklist      *ChecklistResponse `json:"checklist,omitempty"`
	ChecklistError string             `json:"checklist_error,omitempty" example:"trello returned status 429: rate limited"`
}

// ChecklistResponse represents the task checklist attached to a card
type ChecklistResponse struct {
	ID    string   `json:"id"`
	Name  string   `json:"name" example:"Action Items"`
	Items []string `json:"items"`
}

// BoardResponse represents a board
type BoardResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// ListResponse represents a board list
type ListResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MemberResponse represents a board member
type MemberResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

// BoardSelectionResponse represents the selected board with its lists and members
type BoardSelectionResponse struct {
	BoardID string           `json:"board_id"`
	Lists   []ListResponse   `json:"lists"`
	Members []MemberResponse `json:"members"`
}

// CredentialsResponse shows the masked Trello credentials
type CredentialsResponse struct {
	APIKey     string `json:"api_key"`
	Token      string `json:"token"`
	Configured bool   `json:"configured"`
}

// HistoryItemResponse represents one meeting record in the history list
type HistoryItemResponse struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Duration string    `json:"duration"`
}

// MeetingRecordResponse represents a loaded meeting record
type MeetingRecordResponse struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Date       time.Time           `json:"date"`
	Duration   string              `json:"duration"`
	Transcript *TranscriptResponse `json:"transcript"`
	Summary    *SummaryResponse    `json:"summary"`
}

// StateResponse represents the pipeline state of the caller's session
type StateResponse struct {
	Stage           string              `json:"stage"`
	Progress        int                 `json:"progress"`
	UploadStatus    string              `json:"upload_status"`
	PendingFile     string              `json:"pending_file,omitempty"`
	Transcript      *TranscriptResponse `json:"transcript,omitempty"`
	Summary         *SummaryResponse    `json:"summary,omitempty"`
	Tasks           []TaskResponse      `json:"tasks"`
	Keywords        []string            `json:"keywords"`
	LastCard        *CardResponse       `json:"last_card,omitempty"`
	SelectedBoardID string              `json:"selected_board_id,omitempty"`
	Boards          []BoardResponse     `json:"boards,omitempty"`
	Lists           []ListResponse      `json:"lists,omitempty"`
	Members         []MemberResponse    `json:"members,omitempty"`
	CredentialsSet  bool                `json:"credentials_set"`
	HistoryCount    int                 `json:"history_count"`
	LastError       string              `json:"last_error,omitempty"`
}

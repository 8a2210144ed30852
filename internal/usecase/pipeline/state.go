package pipeline

import (
	"github.com/johnquangdev/minutes360/internal/domain/entities"
)

// State is a point-in-time copy of the session
type State struct {
	SessionID       string                `json:"session_id"`
	Stage           entities.Stage        `json:"stage"`
	Progress        int                   `json:"progress"`
	UploadStatus    entities.UploadStatus `json:"upload_status"`
	PendingFile     string                `json:"pending_file,omitempty"`
	Transcript      *entities.Transcript  `json:"transcript,omitempty"`
	Summary         *entities.Summary     `json:"summary,omitempty"`
	Tasks           []entities.Task       `json:"tasks"`
	Keywords        []string              `json:"keywords"`
	LastCard        *entities.Card        `json:"last_card,omitempty"`
	SelectedBoardID string                `json:"selected_board_id,omitempty"`
	Boards          []entities.Board      `json:"boards,omitempty"`
	Lists           []entities.List       `json:"lists,omitempty"`
	Members         []entities.Member     `json:"members,omitempty"`
	CredentialsSet  bool                  `json:"credentials_set"`
	HistoryCount    int                   `json:"history_count"`
	LastError       string                `json:"last_error,omitempty"`
}

// Snapshot returns a copy of the current session state
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := State{
		SessionID:       o.id,
		Stage:           o.stage,
		Progress:        o.progress,
		UploadStatus:    o.uploadStatus,
		Transcript:      o.transcript.Clone(),
		Summary:         o.summary.Clone(),
		Tasks:           cloneTasks(o.tasks),
		Keywords:        cloneStrings(o.keywords),
		SelectedBoardID: o.selectedBoard,
		CredentialsSet:  o.creds.Get().IsComplete(),
		HistoryCount:    o.history.Len(),
		LastError:       o.lastError,
	}
	if o.file != nil {
		s.PendingFile = o.file.Name
	}
	if o.lastCard != nil {
		s.LastCard = cloneCard(o.lastCard)
	}
	if len(o.boardCache) > 0 {
		s.Boards = append([]entities.Board(nil), o.boardCache...)
	}
	if o.selectedBoard != "" {
		s.Lists = append([]entities.List(nil), o.lists[o.selectedBoard]...)
		s.Members = append([]entities.Member(nil), o.members[o.selectedBoard]...)
	}
	return s
}

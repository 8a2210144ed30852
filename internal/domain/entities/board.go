package entities

// Board is a Trello board visible to the credential owner
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// List is a column inside a board
type List struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	BoardID string `json:"idBoard,omitempty"`
}

// Member is a board member
type Member struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// Card is a created Trello card
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	ListID      string `json:"idList"`
	URL         string `json:"url,omitempty"`

	// Set by the publish stage, not by Trello
	Checklist      *Checklist `json:"-"`
	ChecklistError string     `json:"-"`
}

// ChecklistName is the name of the checklist holding one item per task
const ChecklistName = "Action Items"

// Checklist is a checklist attached to a card
type Checklist struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	CardID string      `json:"idCard"`
	Items  []CheckItem `json:"checkItems"`
}

// CheckItem is one entry of a checklist
type CheckItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// CardRequest is the input for creating a card
type CardRequest struct {
	ListID      string
	Name        string
	Description string
}

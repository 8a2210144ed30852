package entities

import (
	"fmt"
	"strings"
	"time"
)

// Placeholders used when the summarization service leaves a section empty
const (
	NoKeyPointsText        = "No key points found."
	NoDecisionsText        = "No decisions recorded."
	NoActionItemsText      = "No action items assigned."
	NoPendingQuestionsText = "No pending questions noted."
)

// Summary is the structured summary produced from one transcript
type Summary struct {
	Title               string    `json:"title"`
	KeyDiscussionPoints string    `json:"key_discussion_points"`
	DecisionsMade       string    `json:"decisions_made"`
	ActionItems         string    `json:"action_items"`
	PendingQuestions    string    `json:"pending_questions"`
	DurationSeconds     *float64  `json:"duration_seconds,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// SummarySections holds the four text sections returned by a summarizer
type SummarySections struct {
	KeyDiscussionPoints string
	DecisionsMade       string
	ActionItems         string
	PendingQuestions    string
}

// NewSummary builds a titled summary, filling empty sections with placeholders
func NewSummary(sections SummarySections, durationSeconds *float64) *Summary {
	now := time.Now()
	s := &Summary{
		Title:               fmt.Sprintf("Meeting Summary - %s", now.Format("2006-01-02")),
		KeyDiscussionPoints: orDefault(sections.KeyDiscussionPoints, NoKeyPointsText),
		DecisionsMade:       orDefault(sections.DecisionsMade, NoDecisionsText),
		ActionItems:         orDefault(sections.ActionItems, NoActionItemsText),
		PendingQuestions:    orDefault(sections.PendingQuestions, NoPendingQuestionsText),
		CreatedAt:           now,
	}
	if durationSeconds != nil {
		d := *durationSeconds
		s.DurationSeconds = &d
	}
	return s
}

// KeywordSource joins the four text sections with a single space
func (s *Summary) KeywordSource() string {
	if s == nil {
		return ""
	}
	return strings.Join([]string{
		s.KeyDiscussionPoints,
		s.DecisionsMade,
		s.ActionItems,
		s.PendingQuestions,
	}, " ")
}

// Clone returns a deep copy
func (s *Summary) Clone() *Summary {
	if s == nil {
		return nil
	}
	c := *s
	if s.DurationSeconds != nil {
		d := *s.DurationSeconds
		c.DurationSeconds = &d
	}
	return &c
}

// SummaryPatch carries user edits; nil fields are left untouched
type SummaryPatch struct {
	Title               *string
	KeyDiscussionPoints *string
	DecisionsMade       *string
	ActionItems         *string
	PendingQuestions    *string
}

// Apply writes the non-nil fields of p into s
func (p SummaryPatch) Apply(s *Summary) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.KeyDiscussionPoints != nil {
		s.KeyDiscussionPoints = *p.KeyDiscussionPoints
	}
	if p.DecisionsMade != nil {
		s.DecisionsMade = *p.DecisionsMade
	}
	if p.ActionItems != nil {
		s.ActionItems = *p.ActionItems
	}
	if p.PendingQuestions != nil {
		s.PendingQuestions = *p.PendingQuestions
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

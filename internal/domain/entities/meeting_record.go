package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingRecord is an immutable snapshot of a transcript and the summary produced from it
type MeetingRecord struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Date            time.Time   `json:"date"`
	DurationSeconds *float64    `json:"duration_seconds,omitempty"`
	Transcript      *Transcript `json:"transcript"`
	Summary         *Summary    `json:"summary"`
}

// NewMeetingRecord snapshots the given artifacts under a fresh identifier
func NewMeetingRecord(transcript *Transcript, summary *Summary) *MeetingRecord {
	r := &MeetingRecord{
		ID:         uuid.New(),
		Date:       time.Now(),
		Transcript: transcript.Clone(),
		Summary:    summary.Clone(),
	}
	if summary != nil {
		r.Title = summary.Title
		if summary.DurationSeconds != nil {
			d := *summary.DurationSeconds
			r.DurationSeconds = &d
		}
	}
	return r
}

// Clone returns a deep copy
func (r *MeetingRecord) Clone() *MeetingRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Transcript = r.Transcript.Clone()
	c.Summary = r.Summary.Clone()
	if r.DurationSeconds != nil {
		d := *r.DurationSeconds
		c.DurationSeconds = &d
	}
	return &c
}

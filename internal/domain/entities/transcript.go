package entities

import (
	"fmt"
	"time"
)

// Transcript is the text returned by the transcription service for one file
type Transcript struct {
	Text            string    `json:"text"`
	FileName        string    `json:"file_name"`
	CreatedAt       time.Time `json:"created_at"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"` // nil when the service did not report it
}

// NewTranscript creates a transcript stamped with the current time
func NewTranscript(text, fileName string, durationSeconds *float64) *Transcript {
	return &Transcript{
		Text:            text,
		FileName:        fileName,
		CreatedAt:       time.Now(),
		DurationSeconds: durationSeconds,
	}
}

// Clone returns a deep copy
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	c := *t
	if t.DurationSeconds != nil {
		d := *t.DurationSeconds
		c.DurationSeconds = &d
	}
	return &c
}

// FormatDuration renders seconds as HH:MM:SS, or "Unknown" when nil
func FormatDuration(seconds *float64) string {
	if seconds == nil {
		return "Unknown"
	}
	s := int(*seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

package repository

import (
	stdErrors "errors"
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
)

func newRecord(text string) *entities.MeetingRecord {
	tr := entities.NewTranscript(text, "meeting.mp3", nil)
	sum := entities.NewSummary(entities.SummarySections{KeyDiscussionPoints: text}, nil)
	return entities.NewMeetingRecord(tr, sum)
}

func TestHistoryRepository_AppendAndList(t *testing.T) {
	repo := NewHistoryRepository()

	first := newRecord("first")
	second := newRecord("second")
	if err := repo.Append(first); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(second); err != nil {
		t.Fatalf("append: %v", err)
	}

	list := repo.List()
	if len(list) != 2 || repo.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("records not in append order")
	}

	if err := repo.Append(first); err == nil {
		t.Fatalf("expected duplicate append to fail")
	}
}

func TestHistoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewHistoryRepository()
	rec := newRecord("original")
	repo.Append(rec)

	// mutating the caller's value after append must not leak into the history
	rec.Transcript.Text = "changed"

	got, err := repo.Get(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Transcript.Text != "original" {
		t.Fatalf("stored record was mutated: %q", got.Transcript.Text)
	}

	got.Summary.Title = "edited"
	again, _ := repo.Get(rec.ID)
	if again.Summary.Title == "edited" {
		t.Fatalf("Get returned shared state")
	}
}

func TestHistoryRepository_GetMissing(t *testing.T) {
	repo := NewHistoryRepository()
	_, err := repo.Get(uuid.New())
	if !stdErrors.Is(err, apperrors.Kind(apperrors.ErrorCode_NOT_FOUND)) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

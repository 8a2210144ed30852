package repository

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/johnquangdev/minutes360/errors"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
)

// HistoryRepository keeps the meetings completed in one session, in memory
type HistoryRepository struct {
	mu      sync.RWMutex
	records []*entities.MeetingRecord
	byID    map[uuid.UUID]int
}

// NewHistoryRepository creates an empty history
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{
		byID: make(map[uuid.UUID]int),
	}
}

// Append stores a copy of the record
func (r *HistoryRepository) Append(record *entities.MeetingRecord) error {
	if record == nil {
		return errors.New("meeting record cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[record.ID]; exists {
		return apperrors.ErrPrecondition("meeting record already exists").
			WithDetail("record_id", record.ID.String())
	}
	r.byID[record.ID] = len(r.records)
	r.records = append(r.records, record.Clone())
	return nil
}

// List returns copies of all records in append order
func (r *HistoryRepository) List() []*entities.MeetingRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.MeetingRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Clone())
	}
	return out
}

// Get returns a copy of the record with the given id
func (r *HistoryRepository) Get(id uuid.UUID) (*entities.MeetingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrRecordNotFound(id.String())
	}
	return r.records[idx].Clone(), nil
}

// Len returns the number of stored records
func (r *HistoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

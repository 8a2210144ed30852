package repositories

import (
	"github.com/google/uuid"
	"github.com/johnquangdev/minutes360/internal/domain/entities"
)

// HistoryRepository is the append-only list of completed meetings for one session
type HistoryRepository interface {
	// Append stores a snapshot; records are never updated afterwards
	Append(record *entities.MeetingRecord) error

	// List returns copies of all records in append order
	List() []*entities.MeetingRecord

	// Get returns a copy of the record with the given id
	Get(id uuid.UUID) (*entities.MeetingRecord, error)

	// Len returns the number of stored records
	Len() int
}

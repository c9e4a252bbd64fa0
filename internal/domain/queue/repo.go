package queue

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a queue entry id does not resolve.
	ErrNotFound = errors.New("queue entry not found")
	// ErrDuplicateWaiting is returned when a patient already has a
	// waiting entry in the queue.
	ErrDuplicateWaiting = errors.New("patient already in queue")
)

// Repository persists queue entries. List returns entries ordered by
// priority rank descending then queue number ascending, with the patient
// relation populated.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status *Status) ([]*Entry, error)
	FindWaitingByPatient(ctx context.Context, patientID uuid.UUID) (*Entry, error)
	CountAll(ctx context.Context) (int, error)
	CountWaitingByPriority(ctx context.Context, p Priority, exclude uuid.UUID) (int, error)
}

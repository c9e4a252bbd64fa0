package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ByDateRange(ctx context.Context, from, to time.Time) ([]*Appointment, error)
	// HasConflict reports whether the doctor already holds an active
	// appointment at the exact instant, excluding the given id.
	HasConflict(ctx context.Context, doctorID uuid.UUID, at time.Time, exclude uuid.UUID) (bool, error)
}

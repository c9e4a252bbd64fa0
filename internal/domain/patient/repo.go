package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a patient id does not resolve to a record.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
}

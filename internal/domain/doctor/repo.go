package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("doctor not found")

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Doctor, int, error)
}

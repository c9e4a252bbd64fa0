package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	doctors Repository
}

func NewService(doctors Repository) *Service {
	return &Service{doctors: doctors}
}

// CreateDoctor registers a doctor. New doctors are active unless the
// request says otherwise; the handler sets Active before calling in.
func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if d.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if d.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	return s.doctors.Update(ctx, d)
}

// Deactivate marks a doctor unavailable without losing their record.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Active = false
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, activeOnly bool, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, activeOnly, limit, offset)
}

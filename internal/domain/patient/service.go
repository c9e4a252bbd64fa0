package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if p.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, params, limit, offset)
}

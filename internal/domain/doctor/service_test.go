package doctor

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockRepo() *mockRepo {
	return &mockRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return ErrNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]*Doctor, int, error) {
	var items []*Doctor
	for _, d := range m.doctors {
		if activeOnly && !d.Active {
			continue
		}
		items = append(items, d)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].LastName < items[j].LastName })
	return items, len(items), nil
}

func TestCreateDoctor(t *testing.T) {
	svc := NewService(newMockRepo())

	d := &Doctor{FirstName: "Gregory", LastName: "House", Specialization: "diagnostics", Active: true}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("CreateDoctor failed: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected doctor id to be set")
	}
}

func TestCreateDoctorValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	tests := []struct {
		name   string
		doctor *Doctor
	}{
		{"missing first name", &Doctor{LastName: "House", Specialization: "diagnostics"}},
		{"missing last name", &Doctor{FirstName: "Gregory", Specialization: "diagnostics"}},
		{"missing specialization", &Doctor{FirstName: "Gregory", LastName: "House"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.CreateDoctor(context.Background(), tt.doctor); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDeactivateDoctor(t *testing.T) {
	svc := NewService(newMockRepo())

	d := &Doctor{FirstName: "Gregory", LastName: "House", Specialization: "diagnostics", Active: true}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("CreateDoctor failed: %v", err)
	}

	got, err := svc.Deactivate(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if got.Active {
		t.Error("expected doctor to be inactive")
	}
}

func TestListDoctorsActiveOnly(t *testing.T) {
	svc := NewService(newMockRepo())

	for _, d := range []*Doctor{
		{FirstName: "Gregory", LastName: "House", Specialization: "diagnostics", Active: true},
		{FirstName: "James", LastName: "Wilson", Specialization: "oncology", Active: false},
	} {
		if err := svc.CreateDoctor(context.Background(), d); err != nil {
			t.Fatalf("CreateDoctor failed: %v", err)
		}
	}

	items, total, err := svc.ListDoctors(context.Background(), true, 20, 0)
	if err != nil {
		t.Fatalf("ListDoctors failed: %v", err)
	}
	if total != 1 || items[0].LastName != "House" {
		t.Errorf("expected only active doctor, got %d", total)
	}

	_, total, err = svc.ListDoctors(context.Background(), false, 20, 0)
	if err != nil {
		t.Fatalf("ListDoctors failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 doctors, got %d", total)
	}
}

func TestGetDoctorNotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.GetDoctor(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

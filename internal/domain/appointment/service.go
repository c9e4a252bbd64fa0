package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/doctor"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

var (
	// ErrSlotConflict is returned when a doctor already holds an active
	// appointment at the requested instant.
	ErrSlotConflict = errors.New("doctor already booked at this time")
	// ErrDoctorInactive is returned when booking against a deactivated
	// doctor.
	ErrDoctorInactive = errors.New("doctor is not active")
	// ErrInvalidStatus is returned for status values outside the
	// enumerated appointment set.
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// ValidationError marks malformed or missing request fields so the
// handler can map them to 400 without inspecting message text.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func errValidation(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// DoctorDirectory resolves doctor references for booking validation.
type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

// PatientDirectory resolves patient references for booking validation.
type PatientDirectory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	appointments Repository
	doctors      DoctorDirectory
	patients     PatientDirectory
}

func NewService(appointments Repository, doctors DoctorDirectory, patients PatientDirectory) *Service {
	return &Service{appointments: appointments, doctors: doctors, patients: patients}
}

// CreateInput carries a booking request. ScheduledAt arrives as an
// RFC 3339 string and is validated here so the caller gets a field-named
// parse error.
type CreateInput struct {
	DoctorID    uuid.UUID `json:"doctor_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	ScheduledAt string    `json:"scheduled_at"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes"`
}

func parseScheduledAt(value string) (time.Time, error) {
	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errValidation("invalid scheduled_at: must be an RFC 3339 timestamp")
	}
	return at, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if in.DoctorID == uuid.Nil {
		return nil, errValidation("doctor_id is required")
	}
	if in.PatientID == uuid.Nil {
		return nil, errValidation("patient_id is required")
	}
	at, err := parseScheduledAt(in.ScheduledAt)
	if err != nil {
		return nil, err
	}

	d, err := s.doctors.GetDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if !d.Active {
		return nil, ErrDoctorInactive
	}
	if _, err := s.patients.GetPatient(ctx, in.PatientID); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = StatusBooked
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	conflict, err := s.appointments.HasConflict(ctx, in.DoctorID, at, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotConflict
	}

	a := &Appointment{
		DoctorID:    in.DoctorID,
		PatientID:   in.PatientID,
		ScheduledAt: at,
		Status:      status,
		Notes:       in.Notes,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateInput is a partial patch; nil fields are left untouched.
type UpdateInput struct {
	DoctorID    *uuid.UUID `json:"doctor_id"`
	PatientID   *uuid.UUID `json:"patient_id"`
	ScheduledAt *string    `json:"scheduled_at"`
	Status      *string    `json:"status"`
	Notes       *string    `json:"notes"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.DoctorID != nil {
		d, err := s.doctors.GetDoctor(ctx, *in.DoctorID)
		if err != nil {
			return nil, err
		}
		if !d.Active {
			return nil, ErrDoctorInactive
		}
		a.DoctorID = *in.DoctorID
	}
	if in.PatientID != nil {
		if _, err := s.patients.GetPatient(ctx, *in.PatientID); err != nil {
			return nil, err
		}
		a.PatientID = *in.PatientID
	}
	if in.ScheduledAt != nil {
		at, err := parseScheduledAt(*in.ScheduledAt)
		if err != nil {
			return nil, err
		}
		a.ScheduledAt = at
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		a.Status = *in.Status
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}

	if in.DoctorID != nil || in.ScheduledAt != nil {
		conflict, err := s.appointments.HasConflict(ctx, a.DoctorID, a.ScheduledAt, a.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrSlotConflict
		}
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateStatus overwrites the status unconditionally; no transition graph
// applies to appointments, only the enumerated set.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = status
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.appointments.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ByDoctor(ctx, doctorID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ByPatient(ctx, patientID)
}

// ListByDay returns the appointments falling on a single UTC calendar day.
func (s *Service) ListByDay(ctx context.Context, date string) ([]*Appointment, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return nil, errValidation("invalid date: must be YYYY-MM-DD")
	}
	return s.appointments.ByDateRange(ctx, day, day.Add(24*time.Hour-time.Nanosecond))
}

// ListByRange returns appointments between two inclusive UTC dates.
func (s *Service) ListByRange(ctx context.Context, fromDate, toDate string) ([]*Appointment, error) {
	from, err := time.ParseInLocation("2006-01-02", fromDate, time.UTC)
	if err != nil {
		return nil, errValidation("invalid from: must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation("2006-01-02", toDate, time.UTC)
	if err != nil {
		return nil, errValidation("invalid to: must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, errValidation("invalid range: to precedes from")
	}
	return s.appointments.ByDateRange(ctx, from, to.Add(24*time.Hour-time.Nanosecond))
}

// CountByDay returns how many appointments fall on the given UTC day.
// Used by the dashboard rollup.
func (s *Service) CountByDay(ctx context.Context, date string) (int, error) {
	items, err := s.ListByDay(ctx, date)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Package dashboard rolls the directories, the appointment book and the
// queue up into the single summary the front-desk screen polls.
package dashboard

import (
	"context"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/doctor"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/queue"
)

// PatientDirectory is the patient-count slice of the patient service.
type PatientDirectory interface {
	ListPatients(ctx context.Context, limit, offset int) ([]*patient.Patient, int, error)
}

// DoctorDirectory is the doctor-count slice of the doctor service.
type DoctorDirectory interface {
	ListDoctors(ctx context.Context, activeOnly bool, limit, offset int) ([]*doctor.Doctor, int, error)
}

// AppointmentBook counts appointments on a calendar day.
type AppointmentBook interface {
	CountByDay(ctx context.Context, date string) (int, error)
}

// QueueEngine provides the queue rollup.
type QueueEngine interface {
	GetStats(ctx context.Context) (*queue.Stats, error)
}

// Summary is the dashboard payload. Computed fresh on every request; no
// caching.
type Summary struct {
	TotalPatients     int          `json:"total_patients"`
	TotalDoctors      int          `json:"total_doctors"`
	ActiveDoctors     int          `json:"active_doctors"`
	AppointmentsToday int          `json:"appointments_today"`
	Queue             *queue.Stats `json:"queue"`
}

type Service struct {
	patients     PatientDirectory
	doctors      DoctorDirectory
	appointments AppointmentBook
	queue        QueueEngine
}

func NewService(patients PatientDirectory, doctors DoctorDirectory, appointments AppointmentBook, q QueueEngine) *Service {
	return &Service{patients: patients, doctors: doctors, appointments: appointments, queue: q}
}

func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	var summary Summary

	_, totalPatients, err := s.patients.ListPatients(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	summary.TotalPatients = totalPatients

	_, totalDoctors, err := s.doctors.ListDoctors(ctx, false, 1, 0)
	if err != nil {
		return nil, err
	}
	summary.TotalDoctors = totalDoctors

	_, activeDoctors, err := s.doctors.ListDoctors(ctx, true, 1, 0)
	if err != nil {
		return nil, err
	}
	summary.ActiveDoctors = activeDoctors

	today := time.Now().UTC().Format("2006-01-02")
	count, err := s.appointments.CountByDay(ctx, today)
	if err != nil {
		return nil, err
	}
	summary.AppointmentsToday = count

	stats, err := s.queue.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	summary.Queue = stats

	return &summary, nil
}

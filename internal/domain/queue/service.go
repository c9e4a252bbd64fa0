package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

var (
	// ErrInvalidStatus is returned when a status value is outside the
	// enumerated set.
	ErrInvalidStatus = errors.New("invalid queue status")
	// ErrInvalidPriority is returned when a priority value is outside the
	// enumerated set.
	ErrInvalidPriority = errors.New("invalid queue priority")
	// ErrInvalidTransition is returned when a status update violates the
	// lifecycle graph.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// PatientDirectory is the slice of the patient service the queue needs:
// resolving an admission's patient reference.
type PatientDirectory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// Service owns the waiting-room ordering and progresses patients through
// consultation.
type Service struct {
	entries        Repository
	patients       PatientDirectory
	consultMinutes int
}

// NewService builds the queue service. consultMinutes is the per-patient
// consultation duration used for wait estimates; non-positive values fall
// back to 15.
func NewService(entries Repository, patients PatientDirectory, consultMinutes int) *Service {
	if consultMinutes <= 0 {
		consultMinutes = 15
	}
	return &Service{entries: entries, patients: patients, consultMinutes: consultMinutes}
}

// Add admits a walk-in patient. Emergency admissions take queue number 0
// (head of line); everyone else gets the next admission tag, counted over
// all entries ever created.
func (s *Service) Add(ctx context.Context, patientID uuid.UUID, priority Priority, notes *string) (*Entry, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if priority == "" {
		priority = PriorityNormal
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	p, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if _, err := s.entries.FindWaitingByPatient(ctx, patientID); err == nil {
		return nil, ErrDuplicateWaiting
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	number := 0
	if priority != PriorityEmergency {
		total, err := s.entries.CountAll(ctx)
		if err != nil {
			return nil, err
		}
		number = total + 1
	}

	e := &Entry{
		QueueNumber: number,
		PatientID:   patientID,
		Status:      StatusWaiting,
		Priority:    priority,
		Notes:       notes,
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}
	e.Patient = p
	return e, nil
}

// AddEmergency admits a patient at emergency priority. If the patient is
// already waiting, their existing entry is promoted in place rather than
// duplicated.
func (s *Service) AddEmergency(ctx context.Context, patientID uuid.UUID) (*Entry, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	p, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	existing, err := s.entries.FindWaitingByPatient(ctx, patientID)
	if err == nil {
		existing.Priority = PriorityEmergency
		existing.QueueNumber = 0
		if err := s.entries.Update(ctx, existing); err != nil {
			return nil, err
		}
		existing.Patient = p
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	e := &Entry{
		QueueNumber: 0,
		PatientID:   patientID,
		Status:      StatusWaiting,
		Priority:    PriorityEmergency,
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}
	e.Patient = p
	return e, nil
}

// UpdateStatus moves an entry through the lifecycle graph. Setting the
// current status again is a no-op; transitions out of completed or
// cancelled are rejected.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Entry, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == status {
		return e, nil
	}
	if !CanTransition(e.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, status)
	}
	e.Status = status
	if err := s.entries.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdatePriority overwrites an entry's priority. Emergency forces queue
// number 0. Dropping an entry out of the emergency slot to urgent hands it
// a fresh number after the other waiting urgent entries; demotion to
// normal keeps whatever number the entry had.
func (s *Service) UpdatePriority(ctx context.Context, id uuid.UUID, priority Priority) (*Entry, error) {
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Priority = priority
	switch {
	case priority == PriorityEmergency:
		e.QueueNumber = 0
	case priority == PriorityUrgent && e.QueueNumber == 0:
		n, err := s.entries.CountWaitingByPriority(ctx, PriorityUrgent, e.ID)
		if err != nil {
			return nil, err
		}
		e.QueueNumber = n + 1
	}

	if err := s.entries.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// NextPatient returns the waiting entry that would be called next, or nil
// if nobody is waiting.
func (s *Service) NextPatient(ctx context.Context) (*Entry, error) {
	waiting := StatusWaiting
	entries, err := s.entries.List(ctx, &waiting)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

// CallNext picks the next waiting patient, moves them to with_doctor and
// returns the announcement read out at the front desk. An empty queue is
// reported, not an error, and mutates nothing.
func (s *Service) CallNext(ctx context.Context) (*CallResult, error) {
	next, err := s.NextPatient(ctx)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return &CallResult{Announcement: "No patients waiting in queue"}, nil
	}

	next.Status = StatusWithDoctor
	if err := s.entries.Update(ctx, next); err != nil {
		return nil, err
	}

	room := "consultation room"
	if next.Priority == PriorityEmergency {
		room = "emergency room"
	}
	name := ""
	if next.Patient != nil {
		name = next.Patient.FullName()
	}
	return &CallResult{
		Entry:        next,
		Announcement: fmt.Sprintf("%s, please proceed to the %s", name, room),
	}, nil
}

// Remove deletes an entry and returns its pre-deletion snapshot.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) (*Entry, error) {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns queue entries, optionally filtered by status, in calling
// order (priority rank descending, then queue number).
func (s *Service) List(ctx context.Context, status *Status) ([]*Entry, error) {
	return s.entries.List(ctx, status)
}

// Enhanced returns the waiting list with live positions and wait
// estimates. Pure projection; stored entries are never touched.
func (s *Service) Enhanced(ctx context.Context) ([]*EnhancedEntry, error) {
	waiting := StatusWaiting
	entries, err := s.entries.List(ctx, &waiting)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	enhanced := make([]*EnhancedEntry, 0, len(entries))
	for i, e := range entries {
		position := i + 1
		enhanced = append(enhanced, &EnhancedEntry{
			Entry:             *e,
			Position:          position,
			EstimatedWaitTime: FormatWait(time.Duration(position*s.consultMinutes) * time.Minute),
			TimeInQueue:       FormatWait(now.Sub(e.CreatedAt)),
			PriorityBadge:     e.Priority.Badge(),
		})
	}
	return enhanced, nil
}

// GetStats aggregates counts by status and priority. Efficiency is the
// share of completed consultations over completed plus still-waiting, as
// a percentage.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	entries, err := s.entries.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return computeStats(entries), nil
}

func computeStats(entries []*Entry) *Stats {
	stats := &Stats{
		Total:      len(entries),
		ByStatus:   make(map[Status]int),
		ByPriority: make(map[Priority]int),
	}
	for _, e := range entries {
		stats.ByStatus[e.Status]++
		stats.ByPriority[e.Priority]++
	}
	stats.Waiting = stats.ByStatus[StatusWaiting]
	stats.Completed = stats.ByStatus[StatusCompleted]
	if stats.Completed+stats.Waiting > 0 {
		stats.Efficiency = float64(stats.Completed) / float64(stats.Completed+stats.Waiting) * 100
	}
	return stats
}

// GetAnalytics extends the stats with current wait-time figures and the
// number of consultations completed today (UTC day).
func (s *Service) GetAnalytics(ctx context.Context) (*Analytics, error) {
	entries, err := s.entries.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	a := &Analytics{Stats: *computeStats(entries)}

	now := time.Now()
	dayStart := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)

	var totalWait time.Duration
	var waiting int
	for _, e := range entries {
		switch e.Status {
		case StatusWaiting:
			wait := now.Sub(e.CreatedAt)
			totalWait += wait
			waiting++
			if m := wait.Minutes(); m > a.LongestWaitMinutes {
				a.LongestWaitMinutes = m
			}
		case StatusCompleted:
			if !e.UpdatedAt.Before(dayStart) {
				a.CompletedToday++
			}
		}
	}
	if waiting > 0 {
		a.AverageWaitMinutes = totalWait.Minutes() / float64(waiting)
	}
	return a, nil
}

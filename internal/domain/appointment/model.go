package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment maps to the appointment table. ScheduledAt is an exact
// instant; no duration is modeled, so conflicts are exact-timestamp
// collisions per doctor.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	Status      string    `db:"status" json:"status"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const (
	StatusScheduled = "scheduled"
	StatusBooked    = "booked"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusBooked:    true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

// ValidStatus reports whether s is in the enumerated appointment set.
func ValidStatus(s string) bool { return validStatuses[s] }

// ActiveStatuses are the states that hold a doctor's slot. The conflict
// check inspects all of them so a freshly booked appointment collides
// with a scheduled or confirmed one at the same instant.
var ActiveStatuses = []string{StatusScheduled, StatusBooked, StatusConfirmed}

package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table. Inactive doctors are kept for history
// but cannot take new appointments.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Specialization string    `db:"specialization" json:"specialization"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func (d *Doctor) FullName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

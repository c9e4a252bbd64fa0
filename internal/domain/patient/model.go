package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Phone     string     `db:"phone" json:"phone"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns the patient's display name used in queue announcements.
func (p *Patient) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

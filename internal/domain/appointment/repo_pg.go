package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, doctor_id, patient_id, scheduled_at, status, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.ScheduledAt, &a.Status,
		&a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, doctor_id, patient_id, scheduled_at, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.DoctorID, a.PatientID, a.ScheduledAt, a.Status, a.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointment SET doctor_id=$2, patient_id=$3, scheduled_at=$4, status=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.DoctorID, a.PatientID, a.ScheduledAt, a.Status, a.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment ORDER BY scheduled_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) ByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment WHERE doctor_id = $1 ORDER BY scheduled_at ASC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) ByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment WHERE patient_id = $1 ORDER BY scheduled_at ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) ByDateRange(ctx context.Context, from, to time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE scheduled_at >= $1 AND scheduled_at <= $2
		ORDER BY scheduled_at ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) HasConflict(ctx context.Context, doctorID uuid.UUID, at time.Time, exclude uuid.UUID) (bool, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE doctor_id = $1 AND scheduled_at = $2 AND id <> $3 AND status = ANY($4)`,
		doctorID, at, exclude, ActiveStatuses).Scan(&n)
	return n > 0, err
}

func collect(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

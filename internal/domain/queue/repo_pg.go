package queue

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const entryCols = `q.id, q.queue_number, q.patient_id, q.status, q.priority, q.notes, q.created_at, q.updated_at,
	p.id, p.first_name, p.last_name, p.phone, p.email, p.gender, p.birth_date, p.address, p.created_at, p.updated_at`

// priorityRank orders emergency > urgent > normal inside SQL.
const priorityRank = `CASE q.priority WHEN 'emergency' THEN 2 WHEN 'urgent' THEN 1 ELSE 0 END`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	var p patient.Patient
	err := row.Scan(&e.ID, &e.QueueNumber, &e.PatientID, &e.Status, &e.Priority, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt,
		&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Email, &p.Gender,
		&p.BirthDate, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Patient = &p
	return &e, nil
}

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO queue_entry (id, queue_number, patient_id, status, priority, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.QueueNumber, e.PatientID, e.Status, e.Priority, e.Notes)
	// The partial unique index on (patient_id) WHERE status='waiting'
	// closes the check-then-insert race on concurrent admissions.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateWaiting
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return scanEntry(r.pool.QueryRow(ctx, `
		SELECT `+entryCols+`
		FROM queue_entry q JOIN patient p ON p.id = q.patient_id
		WHERE q.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, e *Entry) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE queue_entry SET queue_number=$2, status=$3, priority=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.QueueNumber, e.Status, e.Priority, e.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM queue_entry WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, status *Status) ([]*Entry, error) {
	query := `
		SELECT ` + entryCols + `
		FROM queue_entry q JOIN patient p ON p.id = q.patient_id`
	var args []interface{}
	if status != nil {
		query += ` WHERE q.status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY ` + priorityRank + ` DESC, q.queue_number ASC, q.created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

func (r *repoPG) FindWaitingByPatient(ctx context.Context, patientID uuid.UUID) (*Entry, error) {
	return scanEntry(r.pool.QueryRow(ctx, `
		SELECT `+entryCols+`
		FROM queue_entry q JOIN patient p ON p.id = q.patient_id
		WHERE q.patient_id = $1 AND q.status = 'waiting'`, patientID))
}

func (r *repoPG) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM queue_entry`).Scan(&n)
	return n, err
}

func (r *repoPG) CountWaitingByPriority(ctx context.Context, p Priority, exclude uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM queue_entry
		WHERE status = 'waiting' AND priority = $1 AND id <> $2`, p, exclude).Scan(&n)
	return n, err
}

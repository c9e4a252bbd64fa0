package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `id, first_name, last_name, specialization, phone, email, active, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Specialization, &d.Phone,
		&d.Email, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor (id, first_name, last_name, specialization, phone, email, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.FirstName, d.LastName, d.Specialization, d.Phone, d.Email, d.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctor SET first_name=$2, last_name=$3, specialization=$4, phone=$5,
			email=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FirstName, d.LastName, d.Specialization, d.Phone, d.Email, d.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Doctor, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctor`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctor`+where+` ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, first_name, last_name, phone, email, gender, birth_date, address, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Email, &p.Gender,
		&p.BirthDate, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (id, first_name, last_name, phone, email, gender, birth_date, address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Email, p.Gender, p.BirthDate, p.Address)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, phone=$4, email=$5,
			gender=$6, birth_date=$7, address=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Email, p.Gender, p.BirthDate, p.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	query := `SELECT ` + patientCols + ` FROM patient WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM patient WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d)`, idx, idx)
		countQuery += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d)`, idx, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["phone"]; ok {
		query += fmt.Sprintf(` AND phone = $%d`, idx)
		countQuery += fmt.Sprintf(` AND phone = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

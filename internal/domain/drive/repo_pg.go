package drive

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeline/lifeline/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const driveCols = `id, name, location, starts_at, ends_at, organizer, contact_email, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Drive, error) {
	var d Drive
	err := row.Scan(&d.ID, &d.Name, &d.Location, &d.StartsAt, &d.EndsAt,
		&d.Organizer, &d.ContactEmail, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Drive) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blood_drive (id, name, location, starts_at, ends_at, organizer, contact_email)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.Name, d.Location, d.StartsAt, d.EndsAt, d.Organizer, d.ContactEmail)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Drive, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+driveCols+` FROM blood_drive WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *Drive) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE blood_drive SET name=$2, location=$3, starts_at=$4, ends_at=$5,
			organizer=$6, contact_email=$7, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Location, d.StartsAt, d.EndsAt, d.Organizer, d.ContactEmail)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM blood_drive WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Drive, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM blood_drive`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+driveCols+` FROM blood_drive ORDER BY starts_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Drive
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

func (r *repoPG) FindUpcoming(ctx context.Context, location string, from time.Time, limit int) ([]*Drive, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+driveCols+` FROM blood_drive
		WHERE ends_at >= $1
		  AND ($2 = '' OR location ILIKE '%' || $2 || '%')
		ORDER BY starts_at ASC
		LIMIT $3`,
		from, location, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Drive
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, nil
}

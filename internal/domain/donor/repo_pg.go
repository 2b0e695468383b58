package donor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeline/lifeline/internal/domain/compat"
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

const donorCols = `id, full_name, phone, email, blood_type, location, available,
	status, last_donation_at, contact_consent, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Donor, error) {
	var d Donor
	var bt string
	err := row.Scan(&d.ID, &d.FullName, &d.Phone, &d.Email, &bt, &d.Location, &d.Available,
		&d.Status, &d.LastDonationAt, &d.ContactConsent, &d.CreatedAt, &d.UpdatedAt)
	d.BloodType = compat.BloodType(bt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Donor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO donor (id, full_name, phone, email, blood_type, location, available,
			status, last_donation_at, contact_consent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.FullName, d.Phone, d.Email, string(d.BloodType), d.Location, d.Available,
		d.Status, d.LastDonationAt, d.ContactConsent)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Donor, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+donorCols+` FROM donor WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *Donor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE donor SET full_name=$2, phone=$3, email=$4, blood_type=$5, location=$6,
			available=$7, status=$8, last_donation_at=$9, contact_consent=$10, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FullName, d.Phone, d.Email, string(d.BloodType), d.Location,
		d.Available, d.Status, d.LastDonationAt, d.ContactConsent)
	return err
}

func (r *repoPG) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE donor SET available=$2, updated_at=NOW() WHERE id = $1`, id, available)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Donor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM donor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+donorCols+` FROM donor ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Donor
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

func (r *repoPG) MarkDonated(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE donor SET last_donation_at=$2, updated_at=NOW() WHERE id = $1`, id, at)
	return err
}

func (r *repoPG) FindCandidates(ctx context.Context, types []compat.BloodType, location string, limit int) ([]*Donor, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+donorCols+` FROM donor
		WHERE blood_type = ANY($1)
		  AND available = TRUE
		  AND status = 'active'
		  AND location ILIKE '%' || $2 || '%'
		ORDER BY last_donation_at ASC NULLS FIRST
		LIMIT $3`,
		names, location, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Donor
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, nil
}

package bloodrequest

import (
	"context"

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

const requestCols = `id, blood_type, hospital_name, location, contact_info, urgency,
	units_needed, status, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Request, error) {
	var req Request
	var bt, urgency string
	err := row.Scan(&req.ID, &bt, &req.HospitalName, &req.Location, &req.ContactInfo, &urgency,
		&req.UnitsNeeded, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	req.BloodType = compat.BloodType(bt)
	req.Urgency = Urgency(urgency)
	return &req, err
}

func (r *repoPG) Create(ctx context.Context, req *Request) error {
	// id is the primary key; a ULID collision surfaces as a unique violation.
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO emergency_request (id, blood_type, hospital_name, location, contact_info,
			urgency, units_needed, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		req.ID, string(req.BloodType), req.HospitalName, req.Location, req.ContactInfo,
		string(req.Urgency), req.UnitsNeeded, req.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Request, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+requestCols+` FROM emergency_request WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM emergency_request`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+requestCols+` FROM emergency_request ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return r.collect(rows, total)
}

func (r *repoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM emergency_request WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+requestCols+` FROM emergency_request WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Request, int, error) {
	defer rows.Close()
	var items []*Request
	for rows.Next() {
		req, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	return items, total, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE emergency_request SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

package donation

import (
	"context"

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

const donationCols = `id, donor_id, request_id, blood_type, units, hospital, donated_at, ledger_tx_id, created_at`

func (r *repoPG) scan(row pgx.Row) (*Donation, error) {
	var d Donation
	var bt string
	err := row.Scan(&d.ID, &d.DonorID, &d.RequestID, &bt, &d.Units, &d.Hospital,
		&d.DonatedAt, &d.LedgerTxID, &d.CreatedAt)
	d.BloodType = compat.BloodType(bt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Donation) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO donation (id, donor_id, request_id, blood_type, units, hospital, donated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.DonorID, d.RequestID, string(d.BloodType), d.Units, d.Hospital, d.DonatedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Donation, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+donationCols+` FROM donation WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Donation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM donation`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+donationCols+` FROM donation ORDER BY donated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return r.collect(rows, total)
}

func (r *repoPG) ListByDonor(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*Donation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM donation WHERE donor_id = $1`, donorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+donationCols+` FROM donation WHERE donor_id = $1 ORDER BY donated_at DESC LIMIT $2 OFFSET $3`, donorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Donation, int, error) {
	defer rows.Close()
	var items []*Donation
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

func (r *repoPG) SetLedgerTx(ctx context.Context, id uuid.UUID, txID string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE donation SET ledger_tx_id=$2 WHERE id = $1`, id, txID)
	return err
}

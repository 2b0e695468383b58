package donation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Donation, error)
	List(ctx context.Context, limit, offset int) ([]*Donation, int, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*Donation, int, error)
	SetLedgerTx(ctx context.Context, id uuid.UUID, txID string) error
}

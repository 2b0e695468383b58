package drive

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Drive) error
	GetByID(ctx context.Context, id uuid.UUID) (*Drive, error)
	Update(ctx context.Context, d *Drive) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Drive, int, error)
	// FindUpcoming returns drives ending at or after from, optionally filtered
	// by location substring, ordered by start time ascending.
	FindUpcoming(ctx context.Context, location string, from time.Time, limit int) ([]*Drive, error)
}

package donor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lifeline/lifeline/internal/domain/compat"
)

type Repository interface {
	Create(ctx context.Context, d *Donor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Donor, error)
	Update(ctx context.Context, d *Donor) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	List(ctx context.Context, limit, offset int) ([]*Donor, int, error)
	// FindCandidates returns available, active donors whose blood type is in
	// types and whose location matches the given substring, ordered by last
	// donation ascending (never-donated first), capped at limit.
	FindCandidates(ctx context.Context, types []compat.BloodType, location string, limit int) ([]*Donor, error)
	// MarkDonated records the donor's most recent donation time, which feeds
	// search ordering and eligibility.
	MarkDonated(ctx context.Context, id uuid.UUID, at time.Time) error
}

package drive

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifeline/lifeline/pkg/fault"
)

// maxUpcoming caps how many drives a single lookup returns.
const maxUpcoming = 20

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, d *Drive) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Location = strings.TrimSpace(d.Location)
	if d.Name == "" {
		return fault.Validation("name", "name is required")
	}
	if d.Location == "" {
		return fault.Validation("location", "location is required")
	}
	if d.StartsAt.IsZero() {
		return fault.Validation("starts_at", "starts_at is required")
	}
	if d.EndsAt.IsZero() {
		d.EndsAt = d.StartsAt.Add(8 * time.Hour)
	}
	if d.EndsAt.Before(d.StartsAt) {
		return fault.Validation("ends_at", "ends_at must not be before starts_at")
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return fault.Store(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Drive, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fault.Store(err)
	}
	return d, nil
}

func (s *Service) Update(ctx context.Context, d *Drive) error {
	if d.EndsAt.Before(d.StartsAt) {
		return fault.Validation("ends_at", "ends_at must not be before starts_at")
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return fault.Store(err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fault.Store(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Drive, int, error) {
	items, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fault.Store(err)
	}
	return items, total, nil
}

// FindUpcoming returns drives that have not yet ended, soonest first.
// location narrows by substring when non-empty.
func (s *Service) FindUpcoming(ctx context.Context, location string) ([]*Drive, error) {
	items, err := s.repo.FindUpcoming(ctx, strings.TrimSpace(location), s.now(), maxUpcoming)
	if err != nil {
		return nil, fault.Store(err)
	}
	if items == nil {
		items = []*Drive{}
	}
	return items, nil
}

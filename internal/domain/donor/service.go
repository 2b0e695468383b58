package donor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lifeline/lifeline/internal/domain/compat"
	"github.com/lifeline/lifeline/pkg/fault"
)

// maxMatches caps how many anonymized donors a single search returns.
const maxMatches = 10

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Register(ctx context.Context, d *Donor) error {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Location = strings.TrimSpace(d.Location)
	if d.FullName == "" {
		return fault.Validation("full_name", "full_name is required")
	}
	if d.Phone == "" {
		return fault.Validation("phone", "phone is required")
	}
	if d.Location == "" {
		return fault.Validation("location", "location is required")
	}
	bt, err := compat.ParseBloodType(string(d.BloodType))
	if err != nil {
		return fault.Validation("blood_type", err.Error())
	}
	d.BloodType = bt
	if d.Status == "" {
		d.Status = StatusActive
	}
	if d.Status != StatusActive && d.Status != StatusInactive {
		return fault.Validation("status", "status must be active or inactive")
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return fault.Store(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Donor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fault.Store(err)
	}
	return d, nil
}

func (s *Service) Update(ctx context.Context, d *Donor) error {
	if !d.BloodType.Valid() {
		return fault.Validation("blood_type", "invalid blood type")
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return fault.Store(err)
	}
	return nil
}

func (s *Service) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	if err := s.repo.SetAvailability(ctx, id, available); err != nil {
		return fault.Store(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Donor, int, error) {
	items, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fault.Store(err)
	}
	return items, total, nil
}

// Search resolves a structured donor query against the registry and returns
// only anonymized matches. The required blood type is interpreted as the
// recipient's type: candidates are everyone who can donate to it.
func (s *Service) Search(ctx context.Context, q Query) (*SearchResult, error) {
	required, err := compat.ParseBloodType(q.RequiredBloodType)
	if err != nil {
		return nil, fault.Validation("required_blood_type", err.Error())
	}
	location := strings.TrimSpace(q.HospitalLocation)
	if location == "" {
		return nil, fault.Validation("hospital_location", "hospital_location is required")
	}

	donorTypes, err := compat.CompatibleDonorsFor(required)
	if err != nil {
		return nil, fault.Validation("required_blood_type", err.Error())
	}

	candidates, err := s.repo.FindCandidates(ctx, donorTypes, location, maxMatches)
	if err != nil {
		return nil, fault.Store(err)
	}

	now := s.now()
	matches := make([]Match, 0, len(candidates))
	for _, d := range candidates {
		matches = append(matches, Anonymize(d, now))
	}

	log.Debug().
		Str("required_blood_type", string(required)).
		Str("hospital_location", location).
		Int("total_found", len(matches)).
		Msg("donor search resolved")

	return &SearchResult{Donors: matches, TotalFound: len(matches)}, nil
}

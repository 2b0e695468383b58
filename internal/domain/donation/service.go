package donation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lifeline/lifeline/pkg/fault"
)

// anchorTimeout bounds how long a donation record waits on the ledger.
const anchorTimeout = 15 * time.Second

// Ledger anchors a donation digest on an external ledger and returns the
// transaction id. Implementations own transaction construction and signing.
type Ledger interface {
	Anchor(ctx context.Context, note []byte) (string, error)
}

// DonorLog is the slice of the donor registry the donation log writes to.
type DonorLog interface {
	MarkDonated(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Service struct {
	repo   Repository
	donors DonorLog
	ledger Ledger
}

// NewService builds the donation log. donors and ledger may be nil; a nil
// ledger disables anchoring entirely.
func NewService(repo Repository, donors DonorLog, ledger Ledger) *Service {
	return &Service{repo: repo, donors: donors, ledger: ledger}
}

// Record persists a completed donation, updates the donor's last-donation
// time, then best-effort anchors a digest on the ledger. Anchor failures are
// logged and the donation is kept with no transaction id.
func (s *Service) Record(ctx context.Context, d *Donation) error {
	if d.DonorID == uuid.Nil {
		return fault.Validation("donor_id", "donor_id is required")
	}
	if !d.BloodType.Valid() {
		return fault.Validation("blood_type", "invalid blood type")
	}
	d.Hospital = strings.TrimSpace(d.Hospital)
	if d.Hospital == "" {
		return fault.Validation("hospital", "hospital is required")
	}
	if d.Units == 0 {
		d.Units = 1
	}
	if d.Units < 1 {
		return fault.Validation("units", "units must be at least 1")
	}
	if d.DonatedAt.IsZero() {
		d.DonatedAt = time.Now()
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return fault.Store(err)
	}

	if s.donors != nil {
		if err := s.donors.MarkDonated(ctx, d.DonorID, d.DonatedAt); err != nil {
			log.Warn().Err(err).Stringer("donor_id", d.DonorID).Msg("failed to update donor donation time")
		}
	}

	s.anchor(ctx, d)
	return nil
}

func (s *Service) anchor(ctx context.Context, d *Donation) {
	if s.ledger == nil {
		return
	}
	note, err := digestNote(d)
	if err != nil {
		log.Warn().Err(err).Stringer("donation_id", d.ID).Msg("failed to build ledger note")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, anchorTimeout)
	defer cancel()
	txID, err := s.ledger.Anchor(ctx, note)
	if err != nil {
		log.Warn().Err(err).Stringer("donation_id", d.ID).Msg("ledger anchor failed")
		return
	}
	if err := s.repo.SetLedgerTx(ctx, d.ID, txID); err != nil {
		log.Warn().Err(err).Stringer("donation_id", d.ID).Msg("failed to store ledger tx id")
		return
	}
	d.LedgerTxID = &txID
}

// digestNote serializes the non-identifying facts of a donation. Donor
// identity never appears in the note.
func digestNote(d *Donation) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"donation_id": d.ID.String(),
		"blood_type":  string(d.BloodType),
		"units":       d.Units,
		"donated_at":  d.DonatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Donation, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fault.Store(err)
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, donorID *uuid.UUID, limit, offset int) ([]*Donation, int, error) {
	var (
		items []*Donation
		total int
		err   error
	)
	if donorID != nil {
		items, total, err = s.repo.ListByDonor(ctx, *donorID, limit, offset)
	} else {
		items, total, err = s.repo.List(ctx, limit, offset)
	}
	if err != nil {
		return nil, 0, fault.Store(err)
	}
	return items, total, nil
}

package donation

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifeline/lifeline/internal/domain/compat"
)

// Donation is a completed blood donation. LedgerTxID is set only when the
// donation digest was anchored on the external ledger; a nil value is normal
// and never treated as an error.
type Donation struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	DonorID    uuid.UUID        `db:"donor_id" json:"donor_id"`
	RequestID  *string          `db:"request_id" json:"request_id,omitempty"`
	BloodType  compat.BloodType `db:"blood_type" json:"blood_type"`
	Units      int              `db:"units" json:"units"`
	Hospital   string           `db:"hospital" json:"hospital"`
	DonatedAt  time.Time        `db:"donated_at" json:"donated_at"`
	LedgerTxID *string          `db:"ledger_tx_id" json:"ledger_tx_id,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

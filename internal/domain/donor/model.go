package donor

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifeline/lifeline/internal/domain/compat"
)

// Donor statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// minDonationInterval is how long a donor must wait between whole-blood
// donations before being considered eligible again.
const minDonationInterval = 90 * 24 * time.Hour

// Donor maps to the donor table. Full name and phone are PII and must never
// leave this package except through explicitly non-anonymized admin paths.
type Donor struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	FullName       string           `db:"full_name" json:"full_name"`
	Phone          string           `db:"phone" json:"phone"`
	Email          *string          `db:"email" json:"email,omitempty"`
	BloodType      compat.BloodType `db:"blood_type" json:"blood_type"`
	Location       string           `db:"location" json:"location"`
	Available      bool             `db:"available" json:"available"`
	Status         string           `db:"status" json:"status"`
	LastDonationAt *time.Time       `db:"last_donation_at" json:"last_donation_at,omitempty"`
	ContactConsent bool             `db:"contact_consent" json:"contact_consent"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// Match is the anonymized donor projection allowed to leave the resolver.
// It is the only donor shape that may flow toward the language model or any
// other AI-facing code path.
type Match struct {
	BloodType        compat.BloodType `json:"blood_type"`
	Location         string           `json:"location"`
	LastDonationDate string           `json:"last_donation_date,omitempty"`
	ContactAvailable bool             `json:"contact_available"`
	Eligible         bool             `json:"eligible"`
}

// Anonymize projects a donor record into its privacy-safe form.
func Anonymize(d *Donor, now time.Time) Match {
	m := Match{
		BloodType:        d.BloodType,
		Location:         d.Location,
		ContactAvailable: d.ContactConsent && d.Phone != "",
		Eligible:         true,
	}
	if d.LastDonationAt != nil {
		m.LastDonationDate = d.LastDonationAt.Format("2006-01-02")
		m.Eligible = now.Sub(*d.LastDonationAt) >= minDonationInterval
	}
	return m
}

// Query is a structured donor search request.
type Query struct {
	RequiredBloodType string  `json:"required_blood_type"`
	HospitalLocation  string  `json:"hospital_location"`
	Urgency           string  `json:"urgency,omitempty"`
	MaxDistanceKm     float64 `json:"max_distance_km,omitempty"`
}

// SearchResult is the resolver output.
type SearchResult struct {
	Donors     []Match `json:"donors"`
	TotalFound int     `json:"total_found"`
}

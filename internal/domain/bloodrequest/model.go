package bloodrequest

import (
	"strings"
	"time"

	"github.com/lifeline/lifeline/internal/domain/compat"
)

// Urgency drives prioritization language only. There is no separate queue.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func ParseUrgency(s string) (Urgency, bool) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return u, true
	}
	return "", false
}

// Request statuses. The registrar only ever creates requests as active;
// the later transitions belong to operational tooling.
const (
	StatusActive     = "active"
	StatusProcessing = "processing"
	StatusFulfilled  = "fulfilled"
)

// allowedTransitions is the forward-only request lifecycle.
var allowedTransitions = map[string][]string{
	StatusActive:     {StatusProcessing, StatusFulfilled},
	StatusProcessing: {StatusFulfilled},
	StatusFulfilled:  {},
}

func canTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Request maps to the emergency_request table. The id is a ULID so requests
// sort by creation time; the store enforces uniqueness as a final guard.
type Request struct {
	ID           string           `db:"id" json:"id"`
	BloodType    compat.BloodType `db:"blood_type" json:"blood_type"`
	HospitalName string           `db:"hospital_name" json:"hospital_name"`
	Location     *string          `db:"location" json:"location,omitempty"`
	ContactInfo  string           `db:"contact_info" json:"contact_info"`
	Urgency      Urgency          `db:"urgency" json:"urgency"`
	UnitsNeeded  int              `db:"units_needed" json:"units_needed"`
	Status       string           `db:"status" json:"status"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// Acknowledgement is returned to the requester after a successful submission.
type Acknowledgement struct {
	RequestID    string           `json:"request_id"`
	BloodType    compat.BloodType `json:"blood_type"`
	HospitalName string           `json:"hospital_name"`
	Urgency      Urgency          `json:"urgency"`
	UnitsNeeded  int              `json:"units_needed"`
	NextSteps    []string         `json:"next_steps"`
}

// nextSteps communicates operational SLAs to the requester. The steps are
// declarative; the paging pipeline acting on them lives outside this service.
var nextSteps = map[Urgency][]string{
	UrgencyCritical: {
		"Hospital staff will be contacted within 15 minutes",
		"Compatible donors near the hospital are being alerted immediately",
		"Keep the contact line open for dispatch confirmation",
	},
	UrgencyHigh: {
		"Hospital staff will be contacted within 1 hour",
		"Compatible donors near the hospital are being alerted",
		"You will receive a status update within 2 hours",
	},
	UrgencyMedium: {
		"Your request has been queued for the next donor outreach round",
		"Compatible donors will be notified within 6 hours",
		"You will receive a status update within 12 hours",
	},
	UrgencyLow: {
		"Your request has been recorded",
		"Compatible donors will be notified within 24 hours",
		"You will receive a status update within 48 hours",
	},
}

// NextStepsFor returns a copy of the fixed next-step list for an urgency.
func NextStepsFor(u Urgency) []string {
	steps := nextSteps[u]
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}

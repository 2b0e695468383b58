package bloodrequest

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/lifeline/lifeline/internal/domain/compat"
	"github.com/lifeline/lifeline/pkg/fault"
)

// Notifier signals that an emergency request was registered so the paging
// pipeline can act on it. Implementations must be safe for concurrent use.
type Notifier interface {
	EmergencyRequested(ctx context.Context, req *Request) error
}

// Submission is the registrar input.
type Submission struct {
	BloodType    string  `json:"blood_type"`
	HospitalName string  `json:"hospital_name"`
	Location     *string `json:"location,omitempty"`
	ContactInfo  string  `json:"contact_info"`
	Urgency      string  `json:"urgency"`
	UnitsNeeded  int     `json:"units_needed,omitempty"`
}

type Service struct {
	repo     Repository
	notifier Notifier
	newID    func() string
}

// NewService builds the registrar. notifier may be nil when no paging
// pipeline is wired.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		newID:    func() string { return ulid.Make().String() },
	}
}

// Submit validates and persists an emergency request. Validation failures
// never reach the store. This is the one path where data loss is
// unacceptable: persistence errors propagate, notification errors do not.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Acknowledgement, error) {
	bt, err := compat.ParseBloodType(sub.BloodType)
	if err != nil {
		return nil, fault.Validation("blood_type", err.Error())
	}
	hospital := strings.TrimSpace(sub.HospitalName)
	if hospital == "" {
		return nil, fault.Validation("hospital_name", "hospital_name is required")
	}
	contact := strings.TrimSpace(sub.ContactInfo)
	if contact == "" {
		return nil, fault.Validation("contact_info", "contact_info is required")
	}
	urgency, ok := ParseUrgency(sub.Urgency)
	if !ok {
		return nil, fault.Validation("urgency", "urgency must be low, medium, high or critical")
	}
	units := sub.UnitsNeeded
	if units == 0 {
		units = 1
	}
	if units < 1 {
		return nil, fault.Validation("units_needed", "units_needed must be at least 1")
	}

	req := &Request{
		ID:           s.newID(),
		BloodType:    bt,
		HospitalName: hospital,
		Location:     sub.Location,
		ContactInfo:  contact,
		Urgency:      urgency,
		UnitsNeeded:  units,
		Status:       StatusActive,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fault.Store(err)
	}

	if s.notifier != nil {
		if err := s.notifier.EmergencyRequested(ctx, req); err != nil {
			// The request is already safe in the store; a failed page must
			// not fail the submission.
			log.Warn().Err(err).Str("request_id", req.ID).Msg("emergency notification failed")
		}
	}

	log.Info().
		Str("request_id", req.ID).
		Str("blood_type", string(req.BloodType)).
		Str("urgency", string(req.Urgency)).
		Int("units_needed", req.UnitsNeeded).
		Msg("emergency request registered")

	return &Acknowledgement{
		RequestID:    req.ID,
		BloodType:    req.BloodType,
		HospitalName: req.HospitalName,
		Urgency:      req.Urgency,
		UnitsNeeded:  req.UnitsNeeded,
		NextSteps:    NextStepsFor(req.Urgency),
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fault.Store(err)
	}
	return req, nil
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*Request, int, error) {
	var (
		items []*Request
		total int
		err   error
	)
	if status != "" {
		items, total, err = s.repo.ListByStatus(ctx, status, limit, offset)
	} else {
		items, total, err = s.repo.List(ctx, limit, offset)
	}
	if err != nil {
		return nil, 0, fault.Store(err)
	}
	return items, total, nil
}

// UpdateStatus advances a request through its lifecycle. Used by operational
// tooling only; the registrar itself never moves a request past active.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if status != StatusActive && status != StatusProcessing && status != StatusFulfilled {
		return fault.Validation("status", "status must be active, processing or fulfilled")
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fault.Store(err)
	}
	if !canTransition(current.Status, status) {
		return fault.Validation("status", "cannot move request from "+current.Status+" to "+status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return fault.Store(err)
	}
	return nil
}

package bloodrequest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lifeline/lifeline/pkg/fault"
)

// -- Mock Repository --

type mockRepo struct {
	requests  map[string]*Request
	createErr error
	creates   int
}

func newMockRepo() *mockRepo {
	return &mockRepo{requests: make(map[string]*Request)}
}

func (m *mockRepo) Create(_ context.Context, r *Request) error {
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.requests[r.ID]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	m.requests[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return r, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Request, int, error) {
	var result []*Request
	for _, r := range m.requests {
		result = append(result, r)
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByStatus(_ context.Context, status string, limit, offset int) ([]*Request, int, error) {
	var result []*Request
	for _, r := range m.requests {
		if r.Status == status {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id, status string) error {
	r, ok := m.requests[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	r.Status = status
	return nil
}

type mockNotifier struct {
	requests []*Request
	err      error
}

func (m *mockNotifier) EmergencyRequested(_ context.Context, req *Request) error {
	m.requests = append(m.requests, req)
	return m.err
}

func validSubmission() Submission {
	return Submission{
		BloodType:    "O-",
		HospitalName: "City General",
		ContactInfo:  "+911234567890",
		Urgency:      "critical",
	}
}

// -- Submit --

func TestSubmit_Defaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	ack, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ack.RequestID == "" {
		t.Error("expected non-empty request id")
	}
	if ack.UnitsNeeded != 1 {
		t.Errorf("expected units_needed default 1, got %d", ack.UnitsNeeded)
	}
	if len(ack.NextSteps) == 0 {
		t.Error("expected non-empty next steps")
	}
	stored := repo.requests[ack.RequestID]
	if stored == nil {
		t.Fatal("expected request persisted")
	}
	if stored.Status != StatusActive {
		t.Errorf("expected status active, got %s", stored.Status)
	}
}

func TestSubmit_DuplicatesAreDistinct(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	a, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.RequestID == b.RequestID {
		t.Errorf("expected distinct request ids, both %s", a.RequestID)
	}
	if len(repo.requests) != 2 {
		t.Errorf("expected 2 stored requests, got %d", len(repo.requests))
	}
}

func TestSubmit_ValidationSkipsStore(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)

	cases := []struct {
		name   string
		mutate func(*Submission)
		field  string
	}{
		{"bad blood type", func(s *Submission) { s.BloodType = "Z+" }, "blood_type"},
		{"missing hospital", func(s *Submission) { s.HospitalName = "  " }, "hospital_name"},
		{"missing contact", func(s *Submission) { s.ContactInfo = "" }, "contact_info"},
		{"bad urgency", func(s *Submission) { s.Urgency = "urgent" }, "urgency"},
		{"negative units", func(s *Submission) { s.UnitsNeeded = -2 }, "units_needed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.mutate(&sub)
			_, err := svc.Submit(context.Background(), sub)
			if err == nil {
				t.Fatal("expected error")
			}
			if fault.KindOf(err) != fault.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
			if fault.FieldOf(err) != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, fault.FieldOf(err))
			}
		})
	}
	if repo.creates != 0 {
		t.Errorf("expected no persistence attempts, got %d", repo.creates)
	}
}

func TestSubmit_StoreError(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = fmt.Errorf("connection refused")
	svc := NewService(repo, nil)

	_, err := svc.Submit(context.Background(), validSubmission())
	if err == nil {
		t.Fatal("expected error")
	}
	if fault.KindOf(err) != fault.KindStore {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestSubmit_NotifierCalled(t *testing.T) {
	repo := newMockRepo()
	notifier := &mockNotifier{}
	svc := NewService(repo, notifier)

	ack, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.requests) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.requests))
	}
	if notifier.requests[0].ID != ack.RequestID {
		t.Error("notifier received a different request")
	}
}

func TestSubmit_NotifierFailureIsSwallowed(t *testing.T) {
	repo := newMockRepo()
	notifier := &mockNotifier{err: fmt.Errorf("gateway down")}
	svc := NewService(repo, notifier)

	ack, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("expected submission to succeed despite notifier failure, got %v", err)
	}
	if repo.requests[ack.RequestID] == nil {
		t.Error("expected request persisted")
	}
}

// -- NextSteps --

func TestNextStepsPerUrgency(t *testing.T) {
	for _, u := range []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical} {
		if len(NextStepsFor(u)) == 0 {
			t.Errorf("expected next steps for urgency %s", u)
		}
	}
}

// -- UpdateStatus --

func TestUpdateStatus_Transitions(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	ack, _ := svc.Submit(context.Background(), validSubmission())

	if err := svc.UpdateStatus(context.Background(), ack.RequestID, StatusProcessing); err != nil {
		t.Fatalf("active -> processing should succeed: %v", err)
	}
	if err := svc.UpdateStatus(context.Background(), ack.RequestID, StatusActive); err == nil {
		t.Error("processing -> active should fail")
	}
	if err := svc.UpdateStatus(context.Background(), ack.RequestID, StatusFulfilled); err != nil {
		t.Fatalf("processing -> fulfilled should succeed: %v", err)
	}
	if err := svc.UpdateStatus(context.Background(), ack.RequestID, StatusProcessing); err == nil {
		t.Error("fulfilled -> processing should fail")
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc := NewService(newMockRepo(), nil)
	err := svc.UpdateStatus(context.Background(), "01ABC", "archived")
	if err == nil {
		t.Fatal("expected error")
	}
	if fault.KindOf(err) != fault.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}
